package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-rotation/internal/model"
)

// AssessmentStore is the persistence surface for test definitions.
type AssessmentStore interface {
	Create(ctx context.Context, t *model.AssessmentTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentTest, error)
}

// QuestionStore is the persistence surface for question banks.
type QuestionStore interface {
	ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error)
	ReplaceForTest(ctx context.Context, testID uuid.UUID, questions []model.Question) error
}

// PayloadCache holds the fast-lane copy of test payloads.
// Get returns (nil, nil) on a miss.
type PayloadCache interface {
	Get(ctx context.Context, testID uuid.UUID) (*model.TestPayload, error)
	Set(ctx context.Context, payload *model.TestPayload) error
	Delete(ctx context.Context, testID uuid.UUID) error
}

// SelectionPublisher hands served selections to the persistence worker.
type SelectionPublisher interface {
	Publish(ctx context.Context, rec *model.SelectionRecord) error
}
