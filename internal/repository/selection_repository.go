package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-rotation/internal/model"
)

// SelectionRepository persists the audit log of served selections.
// Rows are keyed by the full request tuple, so re-inserting is a no-op.
type SelectionRepository struct {
	pool *pgxpool.Pool
}

// NewSelectionRepository creates a new SelectionRepository.
func NewSelectionRepository(pool *pgxpool.Pool) *SelectionRepository {
	return &SelectionRepository{pool: pool}
}

// BulkInsert writes a batch of records in one statement.
func (r *SelectionRepository) BulkInsert(ctx context.Context, batch []*model.SelectionRecord) error {
	n := len(batch)

	testIDs := make([]uuid.UUID, 0, n)
	seeds := make([]string, 0, n)
	users := make([]string, 0, n)
	resources := make([]string, 0, n)
	attempts := make([]int, 0, n)
	idsBytes := make([][]byte, 0, n)
	selectedAt := make([]time.Time, 0, n)

	for _, rec := range batch {
		tID, err := uuid.Parse(rec.TestID)
		if err != nil {
			return err
		}

		ib, _ := json.Marshal(rec.Identifiers)

		testIDs = append(testIDs, tID)
		seeds = append(seeds, rec.BaseSeed)
		users = append(users, rec.UserSourcedID)
		resources = append(resources, rec.ResourceSourcedID)
		attempts = append(attempts, rec.AttemptNumber)
		idsBytes = append(idsBytes, ib)
		selectedAt = append(selectedAt, rec.SelectedAt)
	}

	query := `
		INSERT INTO attempt_selections
			(test_id, base_seed, user_sourced_id, resource_sourced_id, attempt_number, identifiers, selected_at)
		SELECT u.test_id, u.base_seed, u.user_id, u.resource_id, u.attempt, u.ids, u.selected_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::int[],
			$6::jsonb[],
			$7::timestamptz[]
		) AS u (test_id, base_seed, user_id, resource_id, attempt, ids, selected_at)
		ON CONFLICT DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, testIDs, seeds, users, resources, attempts, idsBytes, selectedAt)
	return err
}

// Insert writes a single record.
func (r *SelectionRepository) Insert(ctx context.Context, rec *model.SelectionRecord) error {
	tID, err := uuid.Parse(rec.TestID)
	if err != nil {
		return err
	}

	ib, _ := json.Marshal(rec.Identifiers)

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempt_selections
			(test_id, base_seed, user_sourced_id, resource_sourced_id, attempt_number, identifiers, selected_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT DO NOTHING`,
		tID, rec.BaseSeed, rec.UserSourcedID, rec.ResourceSourcedID, rec.AttemptNumber, ib, rec.SelectedAt,
	)
	return err
}
