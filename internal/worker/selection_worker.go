package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-rotation/internal/model"
)

const (
	SelectionBatchSize    = 50
	SelectionBatchTimeout = 2 * time.Second
	SelectionPollTimeout  = 1 * time.Second
)

// RecordQueue is the queue surface the worker consumes.
type RecordQueue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Push(ctx context.Context, raw []byte) error
}

// SelectionWriter persists selection records.
type SelectionWriter interface {
	BulkInsert(ctx context.Context, batch []*model.SelectionRecord) error
	Insert(ctx context.Context, rec *model.SelectionRecord) error
}

// SelectionWorker drains the selection queue into PostgreSQL in batches.
type SelectionWorker struct {
	queue  RecordQueue
	writer SelectionWriter
	log    zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
}

// NewSelectionWorker creates a new SelectionWorker.
func NewSelectionWorker(queue RecordQueue, writer SelectionWriter, log zerolog.Logger) *SelectionWorker {
	return &SelectionWorker{
		queue:        queue,
		writer:       writer,
		log:          log.With().Str("component", "selection_worker").Logger(),
		batchSize:    SelectionBatchSize,
		batchTimeout: SelectionBatchTimeout,
		pollTimeout:  SelectionPollTimeout,
	}
}

// Start begins the worker loop and returns after ctx is cancelled and the
// pending batch is flushed. Call in a goroutine.
func (w *SelectionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SelectionWorker started")

	batch := make([]*model.SelectionRecord, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			raw, err := w.queue.Pop(ctx, w.pollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Queue pop error")
					w.backoff(ctx)
				}
				continue
			}
			if raw == nil {
				continue
			}

			var rec model.SelectionRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &rec)
		}
	}
}

// backoff waits one poll interval so a broken queue is not hammered.
func (w *SelectionWorker) backoff(ctx context.Context) {
	t := time.NewTimer(w.pollTimeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (w *SelectionWorker) flushSafe(ctx context.Context, batch []*model.SelectionRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.writer.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk selection insert failed, using fallback")

		for _, rec := range batch {
			if err := w.writer.Insert(ctx, rec); err != nil {
				w.log.Error().Err(err).Str("test_id", rec.TestID).Msg("Single insert failed, requeueing")
				raw, _ := json.Marshal(rec)
				if err := w.queue.Push(ctx, raw); err != nil {
					w.log.Error().Err(err).Msg("requeue failed, selection record dropped")
				}
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Selection batch persisted")
}
