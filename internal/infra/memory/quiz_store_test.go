package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizbox-service/internal/domain"
)

func TestQuizStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewQuizStore()
	for i, id := range []string{"old", "mid", "new"} {
		q := sampleQuiz()
		q.ID = id
		q.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.CreateQuiz(ctx, q); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := store.ListQuizzes(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "mid" {
		t.Fatalf("unexpected order %+v", list)
	}
	if list[0].QuestionCount != 1 {
		t.Fatalf("expected question count in summary, got %d", list[0].QuestionCount)
	}
}

func TestQuizStoreUpdateAndPlays(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(sampleQuiz())

	missing := sampleQuiz()
	missing.ID = "missing"
	if err := store.UpdateQuiz(ctx, missing); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.IncrementPlays(ctx, "quiz-1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	q, _ := store.LoadQuiz(ctx, "quiz-1")
	if q.PlayCount != 3 {
		t.Fatalf("expected 3 plays, got %d", q.PlayCount)
	}
	if err := store.IncrementPlays(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
