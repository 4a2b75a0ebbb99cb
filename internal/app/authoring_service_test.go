package app_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"quizbox-service/internal/app"
	"quizbox-service/internal/domain"
	"quizbox-service/internal/infra/memory"
)

func TestSaveCreatesAndUpdates(t *testing.T) {
	store := memory.NewQuizStore()
	cache := memory.NewQuizRepository(store, time.Minute)
	svc := app.NewAuthoringService(store, cache, nil, "https://quiz.example.com")
	ctx := context.Background()

	draft := domain.Quiz{
		Title: "  Café Trivia ",
		Questions: []domain.Question{
			{Text: "Espresso origin?", Answers: []domain.Answer{{Text: "Italy", IsCorrect: true}, {Text: "Norway"}}},
		},
	}
	created, err := svc.Save(ctx, draft)
	if err != nil {
		t.Fatalf("save new: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", created)
	}
	if created.Slug != "cafe-trivia" || created.Mode != domain.ModeSingle {
		t.Fatalf("unexpected slug/mode %q %q", created.Slug, created.Mode)
	}
	if len(created.Results) != 1 || created.Results[0] != domain.DefaultResultBand() {
		t.Fatalf("expected default result band, got %+v", created.Results)
	}
	if created.Questions[0].Answers[1].ID != "a2" {
		t.Fatalf("expected assigned answer ids, got %+v", created.Questions[0].Answers)
	}

	// warm the cache so the update has something to invalidate
	if _, err := cache.GetQuiz(ctx, created.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if err := store.AddPlays(ctx, created.ID, 3); err != nil {
		t.Fatalf("add plays: %v", err)
	}

	edit := created
	edit.Title = "Coffee Trivia"
	edit.Slug = "ignored"
	updated, err := svc.Save(ctx, edit)
	if err != nil {
		t.Fatalf("save existing: %v", err)
	}
	if updated.Slug != "coffee-trivia" {
		t.Fatalf("slug should follow title, got %q", updated.Slug)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) || updated.PlayCount != 3 {
		t.Fatalf("expected created_at and play count preserved, got %+v", updated)
	}

	cached, err := cache.GetQuiz(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if cached.Title != "Coffee Trivia" {
		t.Fatalf("expected cache invalidated on update, got title %q", cached.Title)
	}
}

func TestSaveValidation(t *testing.T) {
	store := memory.NewQuizStore()
	svc := app.NewAuthoringService(store, nil, nil, "")
	ctx := context.Background()

	cases := []domain.Quiz{
		{Title: "", Questions: []domain.Question{{Text: "q", Answers: []domain.Answer{{Text: "a"}}}}},
		{Title: "No questions"},
		{Title: "No answers", Questions: []domain.Question{{Text: "q"}}},
		{Title: "Bad band", Questions: []domain.Question{{Text: "q", Answers: []domain.Answer{{Text: "a"}}}},
			Results: []domain.ResultBand{{Min: 80, Max: 20}}},
	}
	for _, q := range cases {
		if _, err := svc.Save(ctx, q); !errors.Is(err, domain.ErrInvalidQuiz) {
			t.Fatalf("expected ErrInvalidQuiz for %q, got %v", q.Title, err)
		}
	}

	missing := domain.Quiz{ID: "missing", Title: "Ghost", Questions: []domain.Question{{Text: "q", Answers: []domain.Answer{{Text: "a"}}}}}
	if _, err := svc.Save(ctx, missing); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	older := sampleQuiz()
	newer := sampleQuiz()
	newer.ID = "quiz-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	svc := app.NewAuthoringService(memory.NewQuizStore(older, newer), nil, nil, "")

	list, err := svc.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "quiz-2" || list[1].QuestionCount != 2 {
		t.Fatalf("unexpected list %+v", list)
	}

	list, err = svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(list))
	}
}

func TestUploadImage(t *testing.T) {
	images := &recordingImages{}
	svc := app.NewAuthoringService(memory.NewQuizStore(), nil, images, "")

	url, err := svc.UploadImage(context.Background(), "Photo.JPG", strings.NewReader("jpeg"), 4, "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(images.key, "quiz-assets/") || !strings.HasSuffix(images.key, ".jpg") {
		t.Fatalf("unexpected object key %q", images.key)
	}
	if url != "https://cdn.example.com/"+images.key || images.body != "jpeg" {
		t.Fatalf("unexpected upload result %q %q", url, images.body)
	}

	if _, err := svc.UploadImage(context.Background(), "notes.txt", strings.NewReader("hi"), 2, "text/plain"); !errors.Is(err, domain.ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestEmbedCode(t *testing.T) {
	svc := app.NewAuthoringService(memory.NewQuizStore(sampleQuiz()), nil, nil, "https://quiz.example.com/")

	embed, err := svc.EmbedCode(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if embed.PlayURL != "https://quiz.example.com/play/quiz-1" {
		t.Fatalf("unexpected play url %q", embed.PlayURL)
	}
	if !strings.Contains(embed.Code, `src="https://quiz.example.com/play/quiz-1"`) || !strings.Contains(embed.Code, "min-height:750px") {
		t.Fatalf("unexpected embed code %q", embed.Code)
	}

	if _, err := svc.EmbedCode(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type recordingImages struct {
	key  string
	body string
}

func (r *recordingImages) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	r.key = key
	r.body = string(b)
	return "https://cdn.example.com/" + key, nil
}
