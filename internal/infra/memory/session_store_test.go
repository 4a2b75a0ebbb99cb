package memory

import (
	"testing"
	"time"

	"quizbox-service/internal/app"
	"quizbox-service/internal/player"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(0)

	store.Put(app.NewSession("s1", "quiz-1", player.New(sampleQuiz(), player.Options{})))
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := created
	store := NewSessionStore(time.Minute)
	store.clock = func() time.Time { return now }

	clock := func() time.Time { return created }
	store.Put(app.NewSessionWithClock("s1", "quiz-1", player.New(sampleQuiz(), player.Options{}), clock))
	store.Put(app.NewSessionWithClock("s2", "quiz-1", player.New(sampleQuiz(), player.Options{}), clock))

	now = created.Add(30 * time.Second)
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected fresh session")
	}

	now = created.Add(2 * time.Minute)
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected idle session to expire")
	}
	if dropped := store.Sweep(); dropped != 1 || store.Len() != 0 {
		t.Fatalf("expected sweep to drop s2, dropped=%d len=%d", dropped, store.Len())
	}
}
