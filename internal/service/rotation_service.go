package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-rotation/internal/model"
	"github.com/stemsi/exstem-rotation/internal/rotation"
)

// ErrTestNotFound is returned when no test has the requested ID.
var ErrTestNotFound = errors.New("assessment test not found")

// RotationService serves per-attempt question selections.
//
// The payload cache only mirrors test definitions. Rotation position is never
// cached: every selection is recomputed from the request's attempt number.
type RotationService struct {
	tests     AssessmentStore
	questions QuestionStore
	cache     PayloadCache
	publisher SelectionPublisher
	engine    *rotation.Engine
	log       zerolog.Logger
	now       func() time.Time
}

// NewRotationService creates a new RotationService. cache and publisher may be nil.
func NewRotationService(
	tests AssessmentStore,
	questions QuestionStore,
	cache PayloadCache,
	publisher SelectionPublisher,
	engine *rotation.Engine,
	log zerolog.Logger,
) *RotationService {
	return &RotationService{
		tests:     tests,
		questions: questions,
		cache:     cache,
		publisher: publisher,
		engine:    engine,
		log:       log.With().Str("component", "rotation_service").Logger(),
		now:       time.Now,
	}
}

// Select returns the ordered questions for one attempt. An empty base seed
// defaults to the test ID.
func (s *RotationService) Select(ctx context.Context, testID uuid.UUID, req rotation.Request) (*model.Selection, error) {
	payload, err := s.loadPayload(ctx, testID)
	if err != nil {
		return nil, err
	}
	if req.BaseSeed == "" {
		req.BaseSeed = testID.String()
	}

	bank := rotation.NewBank[model.Question](len(payload.Questions))
	for _, q := range payload.Questions {
		bank.Put(q.Identifier, q)
	}

	questions, err := rotation.SelectWith(s.engine, payload.Test.Spec, bank, req)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.Identifier
	}

	sel := &model.Selection{
		TestID:            testID,
		BaseSeed:          req.BaseSeed,
		AttemptNumber:     req.AttemptNumber,
		UserSourcedID:     req.UserSourcedID,
		ResourceSourcedID: req.ResourceSourcedID,
		Identifiers:       ids,
		Questions:         questions,
	}

	s.publish(ctx, sel)

	s.log.Debug().
		Str("test_id", testID.String()).
		Str("user_sourced_id", req.UserSourcedID).
		Int("attempt", req.AttemptNumber).
		Int("questions", len(ids)).
		Msg("Selection served")
	return sel, nil
}

// Preview computes the identifiers of attempts 1..attempts for one learner,
// with the number of identifiers each attempt adds to cumulative coverage.
func (s *RotationService) Preview(ctx context.Context, testID uuid.UUID, req rotation.Request, attempts int) (*model.Preview, error) {
	payload, err := s.loadPayload(ctx, testID)
	if err != nil {
		return nil, err
	}
	if req.BaseSeed == "" {
		req.BaseSeed = testID.String()
	}

	bankIDs := make([]string, len(payload.Questions))
	for i, q := range payload.Questions {
		bankIDs[i] = q.Identifier
	}

	preview := &model.Preview{
		TestID:   testID,
		Sections: rotation.Plan(payload.Test.Spec),
		Attempts: make([]model.AttemptPreview, 0, attempts),
	}

	seen := make(map[string]struct{})
	for attempt := 1; attempt <= attempts; attempt++ {
		req.AttemptNumber = attempt
		ids, err := s.engine.Identifiers(payload.Test.Spec, bankIDs, req)
		if err != nil {
			return nil, fmt.Errorf("preview attempt %d: %w", attempt, err)
		}
		fresh := 0
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				fresh++
			}
		}
		preview.Attempts = append(preview.Attempts, model.AttemptPreview{
			AttemptNumber:  attempt,
			Identifiers:    ids,
			NewIdentifiers: fresh,
			CoveredTotal:   len(seen),
		})
	}
	return preview, nil
}

// Invalidate drops the cached payload of a test.
func (s *RotationService) Invalidate(ctx context.Context, testID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, testID); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Failed to invalidate payload cache")
	}
}

// loadPayload reads the test from the payload cache, falling back to
// PostgreSQL and re-warming the cache on a miss.
func (s *RotationService) loadPayload(ctx context.Context, testID uuid.UUID) (*model.TestPayload, error) {
	if s.cache != nil {
		payload, err := s.cache.Get(ctx, testID)
		if err != nil {
			s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Payload cache read failed, using database")
		} else if payload != nil {
			return payload, nil
		}
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	payload := &model.TestPayload{Test: *test, Questions: questions}

	if s.cache != nil {
		if err := s.cache.Set(ctx, payload); err != nil {
			s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Failed to warm payload cache")
		}
	}
	return payload, nil
}

func (s *RotationService) publish(ctx context.Context, sel *model.Selection) {
	if s.publisher == nil {
		return
	}
	rec := &model.SelectionRecord{
		TestID:            sel.TestID.String(),
		BaseSeed:          sel.BaseSeed,
		AttemptNumber:     sel.AttemptNumber,
		UserSourcedID:     sel.UserSourcedID,
		ResourceSourcedID: sel.ResourceSourcedID,
		Identifiers:       sel.Identifiers,
		SelectedAt:        s.now().UTC(),
	}
	// The selection is reproducible from its request, so a lost audit row is not fatal.
	if err := s.publisher.Publish(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("test_id", rec.TestID).Msg("Failed to enqueue selection record")
	}
}
