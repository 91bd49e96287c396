package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-rotation/internal/model"
)

// AssessmentRepository handles assessment-test definition data access.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// Create inserts a new assessment test and fills its generated columns.
func (r *AssessmentRepository) Create(ctx context.Context, t *model.AssessmentTest) error {
	spec, err := json.Marshal(t.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_tests (identifier, title, source_xml, spec)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Identifier, t.Title, t.SourceXML, spec,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves an assessment test by its UUID. Returns pgx.ErrNoRows when absent.
func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentTest, error) {
	var (
		t    model.AssessmentTest
		spec []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, identifier, title, source_xml, spec, created_at, updated_at
		 FROM assessment_tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Identifier, &t.Title, &t.SourceXML, &spec, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(spec, &t.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	return &t, nil
}
