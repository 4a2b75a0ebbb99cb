package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizbox-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Players live in a local map; a session is bound to the instance that
//     opened it.
//   - Redis holds a liveness key per session with a sliding TTL. Once the key
//     expires the local session is dropped on next access.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.QuizID(), s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ctx := context.Background()
	if s.ttl > 0 {
		alive, err := s.client.Expire(ctx, s.key(sessionID), s.ttl).Result()
		if err == nil && !alive {
			s.Delete(sessionID)
			return nil, false
		}
	}
	return session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Sweep drops local sessions whose liveness key has expired.
func (s *SessionStore) Sweep() int {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	ctx := context.Background()
	dropped := 0
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil || n > 0 {
			continue
		}
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		dropped++
	}
	return dropped
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
