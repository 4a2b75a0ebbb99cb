package app

import (
	"sync"
	"time"

	"quizbox-service/internal/player"
)

// Session is one play-through of a quiz, owning its player exclusively.
type Session struct {
	id         string
	quizID     string
	createdAt  time.Time
	now        func() time.Time
	mu         sync.Mutex
	player     *player.Player
	lastActive time.Time
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, quizID string, p *player.Player) *Session {
	return NewSessionWithClock(id, quizID, p, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, quizID string, p *player.Player, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:         id,
		quizID:     quizID,
		createdAt:  created,
		now:        now,
		player:     p,
		lastActive: created,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) QuizID() string { return s.quizID }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// IdleSince reports how long the session has been untouched at t.
func (s *Session) IdleSince(t time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Sub(s.lastActive)
}

// apply runs one transition under the session lock and returns the
// resulting state. The state is returned even when fn fails.
func (s *Session) apply(fn func(p *player.Player) error) (player.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
	err := fn(s.player)
	return s.player.Snapshot(), err
}

func (s *Session) snapshot() player.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Snapshot()
}
