package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-rotation/internal/config"
	"github.com/stemsi/exstem-rotation/internal/model"
)

// SelectionQueue is the Redis list between the rotation service and the
// selection persistence worker.
type SelectionQueue struct {
	rdb *redis.Client
	key string
}

// NewSelectionQueue creates a new SelectionQueue on the configured queue key.
func NewSelectionQueue(rdb *redis.Client) *SelectionQueue {
	return &SelectionQueue{rdb: rdb, key: config.WorkerKey.PersistSelectionsQueue}
}

// Publish enqueues a selection record.
func (q *SelectionQueue) Publish(ctx context.Context, rec *model.SelectionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal selection record: %w", err)
	}
	return q.Push(ctx, raw)
}

// Push appends a raw payload to the tail of the queue.
func (q *SelectionQueue) Push(ctx context.Context, raw []byte) error {
	return q.rdb.RPush(ctx, q.key, raw).Err()
}

// Pop blocks up to timeout for the next payload. It returns (nil, nil) when
// the queue stayed empty.
func (q *SelectionQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(item) < 2 {
		return nil, nil
	}
	return []byte(item[1]), nil
}
