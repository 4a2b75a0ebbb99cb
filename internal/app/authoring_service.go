package app

import (
	"context"
	"fmt"
	"html"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizbox-service/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	imagePrefix      = "quiz-assets/"
)

// AuthoringService holds the operator use cases: saving, listing, image
// upload and embed code generation.
type AuthoringService struct {
	store     QuizStore
	cache     QuizRepository
	images    ImageStore
	publicURL string
	now       func() time.Time
	newID     func() string
}

func NewAuthoringService(store QuizStore, cache QuizRepository, images ImageStore, publicURL string) *AuthoringService {
	return &AuthoringService{
		store:     store,
		cache:     cache,
		images:    images,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Save creates the quiz when it has no id and updates it otherwise.
func (s *AuthoringService) Save(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := domain.ValidateDraft(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if len(quiz.Results) == 0 {
		quiz.Results = []domain.ResultBand{domain.DefaultResultBand()}
	}
	// Slug always follows the title.
	quiz.Slug = ""
	quiz, err := domain.Normalize(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}

	now := s.now()
	if quiz.ID == "" {
		quiz.ID = s.newID()
		quiz.CreatedAt = now
		quiz.UpdatedAt = now
		quiz.PlayCount = 0
		if err := s.store.CreateQuiz(ctx, quiz); err != nil {
			return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
		}
		return quiz, nil
	}

	existing, err := s.store.LoadQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.CreatedAt = existing.CreatedAt
	quiz.PlayCount = existing.PlayCount
	quiz.UpdatedAt = now
	if err := s.store.UpdateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, quiz.ID)
	}
	return quiz, nil
}

// Get returns the full quiz document for editing.
func (s *AuthoringService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.LoadQuiz(ctx, quizID)
}

// List returns quizzes, newest first. Non-positive limits use the default.
func (s *AuthoringService) List(ctx context.Context, limit int) ([]domain.QuizSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.ListQuizzes(ctx, limit)
}

// UploadImage stores an image under a random object name and returns its URL.
func (s *AuthoringService) UploadImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", domain.ErrUnsupportedImage
	}
	if s.images == nil {
		return "", fmt.Errorf("image store not configured")
	}

	key := imagePrefix + s.newID() + imageExt(filename, mediaType)
	url, err := s.images.Put(ctx, key, r, size, mediaType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

func imageExt(filename, mediaType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Embed is the shareable link and iframe snippet for a quiz.
type Embed struct {
	QuizID  string `json:"quizId"`
	PlayURL string `json:"playUrl"`
	Code    string `json:"code"`
}

// EmbedCode builds the public link and iframe embed code for an existing quiz.
func (s *AuthoringService) EmbedCode(ctx context.Context, quizID string) (Embed, error) {
	if _, err := s.store.LoadQuiz(ctx, quizID); err != nil {
		return Embed{}, err
	}
	playURL := s.publicURL + "/play/" + quizID
	code := fmt.Sprintf(`<iframe src="%s" style="width:100%%; border:none; min-height:750px; overflow:hidden;" scrolling="no" allow="clipboard-write"></iframe>`,
		html.EscapeString(playURL))
	return Embed{QuizID: quizID, PlayURL: playURL, Code: code}, nil
}
