package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizbox-service/internal/domain"
)

// QuizStore persists quiz documents as JSONB in the quizzes table.
// Title, slug, play count and timestamps are kept in columns; the columns win
// over the document copy when loading.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, title, slug, data, play_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		quiz.ID, quiz.Title, quiz.Slug, data, quiz.PlayCount, quiz.CreatedAt, quiz.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE quizzes SET title=$2, slug=$3, data=$4, updated_at=$5
		WHERE id=$1`,
		quiz.ID, quiz.Title, quiz.Slug, data, quiz.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		raw                  []byte
		title, slug          string
		plays                int64
		createdAt, updatedAt time.Time
	)
	row := s.pool.QueryRow(ctx, `
		SELECT data, title, slug, play_count, created_at, updated_at
		FROM quizzes WHERE id=$1`, quizID)
	if err := row.Scan(&raw, &title, &slug, &plays, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	quiz.ID = quizID
	if title != "" {
		quiz.Title = title
	}
	if slug != "" {
		quiz.Slug = slug
	}
	quiz.PlayCount = plays
	quiz.CreatedAt = createdAt
	quiz.UpdatedAt = updatedAt
	return quiz, nil
}

func (s *QuizStore) ListQuizzes(ctx context.Context, limit int) ([]domain.QuizSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, slug,
			CASE jsonb_typeof(data->'questions') WHEN 'array' THEN jsonb_array_length(data->'questions') ELSE 0 END,
			play_count, created_at, updated_at
		FROM quizzes
		ORDER BY created_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizSummary, 0, limit)
	for rows.Next() {
		var sum domain.QuizSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Slug, &sum.QuestionCount, &sum.PlayCount, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return out, nil
}

// IncrementPlays bumps the play counter column.
func (s *QuizStore) IncrementPlays(ctx context.Context, quizID string) error {
	return s.AddPlays(ctx, quizID, 1)
}

// AddPlays adds n to the play counter column.
func (s *QuizStore) AddPlays(ctx context.Context, quizID string, n int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE quizzes SET play_count = play_count + $2 WHERE id=$1`, quizID, n)
	if err != nil {
		return fmt.Errorf("add plays: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
