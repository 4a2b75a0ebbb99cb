package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizbox-service/internal/domain"
	"quizbox-service/internal/logging"
	"quizbox-service/internal/player"
)

const playCountTimeout = 5 * time.Second

// PlayService drives server-side play sessions.
type PlayService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	counter  PlayCounter
	observer PlayObserver
	opts     player.Options
	log      *zap.Logger
	newID    func() string

	pending sync.WaitGroup
}

// PlayServiceOption customizes a PlayService.
type PlayServiceOption func(*PlayService)

// WithPlayCounter sets the counter bumped whenever a session is opened.
func WithPlayCounter(counter PlayCounter) PlayServiceOption {
	return func(s *PlayService) { s.counter = counter }
}

// WithObserver registers a session lifecycle observer.
func WithObserver(observer PlayObserver) PlayServiceOption {
	return func(s *PlayService) { s.observer = observer }
}

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) PlayServiceOption {
	return func(s *PlayService) { s.log = logging.OrNop(log) }
}

func NewPlayService(sessions SessionRepository, quizzes QuizRepository, opts player.Options, options ...PlayServiceOption) *PlayService {
	s := &PlayService{
		sessions: sessions,
		quizzes:  quizzes,
		opts:     opts,
		log:      zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Open creates a new play session for quizID.
func (s *PlayService) Open(ctx context.Context, quizID string) (string, player.State, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", player.State{}, err
	}
	quiz, err = domain.Normalize(quiz)
	if err != nil {
		return "", player.State{}, err
	}

	session := NewSession(s.newID(), quizID, player.New(quiz, s.opts))
	s.sessions.Put(session)
	if s.observer != nil {
		s.observer.SessionOpened(quizID)
	}
	s.countPlay(quizID)
	return session.ID(), session.snapshot(), nil
}

// countPlay bumps the play counter in the background. Failures are logged and
// never reach the player.
func (s *PlayService) countPlay(quizID string) {
	if s.counter == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), playCountTimeout)
		defer cancel()
		if err := s.counter.IncrementPlays(ctx, quizID); err != nil {
			s.log.Warn("play count increment failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
	}()
}

// QuizPreview is what a player may see about a quiz before opening a session.
type QuizPreview struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Mode          domain.AnswerMode `json:"mode"`
	QuestionCount int               `json:"questionCount"`
}

// Preview returns public quiz metadata without questions or answers.
func (s *PlayService) Preview(ctx context.Context, quizID string) (QuizPreview, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return QuizPreview{}, err
	}
	quiz, err = domain.Normalize(quiz)
	if err != nil {
		return QuizPreview{}, err
	}
	return QuizPreview{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Slug:          quiz.Slug,
		Mode:          quiz.Mode,
		QuestionCount: len(quiz.Questions),
	}, nil
}

// Wait blocks until background play-count updates have finished.
func (s *PlayService) Wait() {
	s.pending.Wait()
}

// State returns the current view of a session.
func (s *PlayService) State(_ context.Context, sessionID string) (player.State, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return player.State{}, domain.ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// Start moves the session from intro to playing.
func (s *PlayService) Start(_ context.Context, sessionID string) (player.State, error) {
	return s.apply(sessionID, func(p *player.Player) error { return p.Start() })
}

// Answer submits the selected answer ids for questionIndex.
func (s *PlayService) Answer(_ context.Context, sessionID string, questionIndex int, answerIDs []string) (player.State, error) {
	return s.apply(sessionID, func(p *player.Player) error {
		return p.SubmitSelection(questionIndex, answerIDs)
	})
}

// Back undoes the previous answer. It is a no-op at the first question.
func (s *PlayService) Back(_ context.Context, sessionID string) (player.State, error) {
	return s.apply(sessionID, func(p *player.Player) error {
		p.GoBack()
		return nil
	})
}

// Reset restarts the session from its start state.
func (s *PlayService) Reset(_ context.Context, sessionID string) (player.State, error) {
	return s.apply(sessionID, func(p *player.Player) error {
		p.Reset()
		return nil
	})
}

// Close discards a session.
func (s *PlayService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.sessions.Delete(sessionID)
	if s.observer != nil {
		s.observer.SessionClosed(session.QuizID())
	}
}

func (s *PlayService) apply(sessionID string, fn func(p *player.Player) error) (player.State, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return player.State{}, domain.ErrSessionNotFound
	}
	return session.apply(fn)
}
