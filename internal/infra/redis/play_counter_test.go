package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"quizbox-service/internal/infra/memory"
)

func TestPlayCounterFlushesToSink(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	counter := NewPlayCounter(newClient(mr))
	store := memory.NewQuizStore(sampleQuiz())

	for i := 0; i < 3; i++ {
		if err := counter.IncrementPlays(ctx, "quiz-1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	_ = counter.IncrementPlays(ctx, "deleted-quiz")

	if n, _ := counter.Pending(ctx, "quiz-1"); n != 3 {
		t.Fatalf("expected 3 pending plays, got %d", n)
	}

	flushed, err := counter.Flush(ctx, store)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if flushed != 1 {
		t.Fatalf("expected one quiz flushed, got %d", flushed)
	}

	quiz, _ := store.LoadQuiz(ctx, "quiz-1")
	if quiz.PlayCount != 3 {
		t.Fatalf("expected 3 plays in store, got %d", quiz.PlayCount)
	}
	if n, _ := counter.Pending(ctx, "quiz-1"); n != 0 {
		t.Fatalf("expected no pending plays after flush, got %d", n)
	}
	if n, _ := counter.Pending(ctx, "deleted-quiz"); n != 0 {
		t.Fatalf("expected unknown quiz counter dropped, got %d", n)
	}

	// A second flush with nothing new is a no-op.
	if flushed, err := counter.Flush(ctx, store); err != nil || flushed != 0 {
		t.Fatalf("expected empty flush, got %d %v", flushed, err)
	}
}
