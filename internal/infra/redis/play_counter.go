package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"quizbox-service/internal/domain"
)

const playsKey = "quiz:plays"

// PlaySink receives aggregated play counts when the counter is flushed.
type PlaySink interface {
	AddPlays(ctx context.Context, quizID string, n int64) error
}

// PlayCounter buffers play counts in a Redis hash (HINCRBY quiz:plays {quizID} 1)
// and writes them behind to a PlaySink on Flush.
type PlayCounter struct {
	client *redis.Client
}

func NewPlayCounter(client *redis.Client) *PlayCounter {
	return &PlayCounter{client: client}
}

func (c *PlayCounter) IncrementPlays(ctx context.Context, quizID string) error {
	return c.client.HIncrBy(ctx, playsKey, quizID, 1).Err()
}

// Pending returns the buffered, not yet flushed, count for quizID.
func (c *PlayCounter) Pending(ctx context.Context, quizID string) (int64, error) {
	n, err := c.client.HGet(ctx, playsKey, quizID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Flush moves buffered counts into sink. Each field is decremented by the
// amount written, so increments that race with the flush are kept for the
// next one. It returns the number of quizzes flushed.
func (c *PlayCounter) Flush(ctx context.Context, sink PlaySink) (int, error) {
	counts, err := c.client.HGetAll(ctx, playsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read play counts: %w", err)
	}

	flushed := 0
	for quizID, raw := range counts {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		if err := sink.AddPlays(ctx, quizID, n); err != nil {
			if errors.Is(err, domain.ErrQuizNotFound) {
				_ = c.client.HDel(ctx, playsKey, quizID).Err()
				continue
			}
			return flushed, fmt.Errorf("flush plays for %s: %w", quizID, err)
		}
		if err := c.client.HIncrBy(ctx, playsKey, quizID, -n).Err(); err != nil {
			return flushed, fmt.Errorf("settle plays for %s: %w", quizID, err)
		}
		flushed++
	}
	return flushed, nil
}
