package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-rotation/internal/config"
)

// AttemptService tracks the latest attempt number of a learner on a resource.
// It is the only holder of rotation position; INCR keeps it atomic and
// monotonic across concurrent requests.
type AttemptService struct {
	rdb *redis.Client
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(rdb *redis.Client) *AttemptService {
	return &AttemptService{rdb: rdb}
}

// Next starts a new attempt and returns its 1-based number.
func (s *AttemptService) Next(ctx context.Context, testID uuid.UUID, userSourcedID, resourceSourcedID string) (int, error) {
	key := config.CacheKey.AttemptCounterKey(testID.String(), userSourcedID, resourceSourcedID)
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempt: %w", err)
	}
	return int(n), nil
}

// Current returns the latest attempt number, or 0 if none was started.
func (s *AttemptService) Current(ctx context.Context, testID uuid.UUID, userSourcedID, resourceSourcedID string) (int, error) {
	key := config.CacheKey.AttemptCounterKey(testID.String(), userSourcedID, resourceSourcedID)
	n, err := s.rdb.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get attempt: %w", err)
	}
	return n, nil
}
