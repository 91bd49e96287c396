package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-rotation/internal/config"
	"github.com/stemsi/exstem-rotation/internal/model"
)

// RedisPayloadCache stores test payloads as JSON strings in Redis.
type RedisPayloadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisPayloadCache creates a new RedisPayloadCache. A zero ttl keeps entries until deleted.
func NewRedisPayloadCache(rdb *redis.Client, ttl time.Duration) *RedisPayloadCache {
	return &RedisPayloadCache{rdb: rdb, ttl: ttl}
}

func (c *RedisPayloadCache) Get(ctx context.Context, testID uuid.UUID) (*model.TestPayload, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.TestPayloadKey(testID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload model.TestPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}

func (c *RedisPayloadCache) Set(ctx context.Context, payload *model.TestPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	key := config.CacheKey.TestPayloadKey(payload.Test.ID.String())
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *RedisPayloadCache) Delete(ctx context.Context, testID uuid.UUID) error {
	return c.rdb.Del(ctx, config.CacheKey.TestPayloadKey(testID.String())).Err()
}
