package memory

import (
	"sync"
	"time"

	"quizbox-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions idle for longer than ttl are dropped on access; a zero ttl keeps
// them until deleted.
type SessionStore struct {
	ttl      time.Duration
	clock    func() time.Time
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && session.IdleSince(s.clock()) > s.ttl {
		s.Delete(sessionID)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep removes every idle session and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, session := range s.sessions {
		if session.IdleSince(now) > s.ttl {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
