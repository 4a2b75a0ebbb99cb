package app

import (
	"context"
	"io"

	"quizbox-service/internal/domain"
)

// QuizStore is the record store for quiz documents.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	// UpdateQuiz replaces an existing quiz; unknown ids yield domain.ErrQuizNotFound.
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// ListQuizzes returns summaries, most recently created first.
	ListQuizzes(ctx context.Context, limit int) ([]domain.QuizSummary, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID string)
}

// PlayCounter maintains the per-quiz play counter.
type PlayCounter interface {
	IncrementPlays(ctx context.Context, quizID string) error
}

// ImageStore stores uploaded images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// SessionRepository abstracts how play sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// PlayObserver is notified about session lifecycle events.
type PlayObserver interface {
	SessionOpened(quizID string)
	SessionClosed(quizID string)
}
