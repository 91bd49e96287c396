package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-rotation/internal/model"
	"github.com/stemsi/exstem-rotation/internal/qti"
	"github.com/stemsi/exstem-rotation/internal/rotation"
)

// Domain Errors
var (
	ErrInvalidDocument   = errors.New("invalid assessment test document")
	ErrDuplicateQuestion = errors.New("duplicate question identifier")
)

// CacheInvalidator drops cached copies of a test after its bank changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, testID uuid.UUID)
}

// AssessmentService handles importing test definitions and their question banks.
type AssessmentService struct {
	tests       AssessmentStore
	questions   QuestionStore
	invalidator CacheInvalidator
	log         zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	tests AssessmentStore,
	questions QuestionStore,
	invalidator CacheInvalidator,
	log zerolog.Logger,
) *AssessmentService {
	return &AssessmentService{
		tests:       tests,
		questions:   questions,
		invalidator: invalidator,
		log:         log.With().Str("component", "assessment_service").Logger(),
	}
}

// Import parses an assessment-test document and stores its rotation rules.
// The title falls back to the document title, then to its identifier.
func (s *AssessmentService) Import(ctx context.Context, req model.ImportTestRequest) (*model.AssessmentTest, error) {
	parsed, err := qti.ParseBytes([]byte(req.QTIXML))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = parsed.Title
	}
	if title == "" {
		title = parsed.Identifier
	}

	test := &model.AssessmentTest{
		Identifier: parsed.Identifier,
		Title:      title,
		SourceXML:  req.QTIXML,
		Spec:       parsed.Spec,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Str("identifier", test.Identifier).
		Int("sections", len(test.Spec.Sections)).
		Msg("Assessment test imported")
	return test, nil
}

// Get retrieves a test definition.
func (s *AssessmentService) Get(ctx context.Context, testID uuid.UUID) (*model.AssessmentTest, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return test, nil
}

// ReplaceQuestions swaps a test's question bank. Every identifier the test's
// sections reference must be present in the new bank.
func (s *AssessmentService) ReplaceQuestions(ctx context.Context, testID uuid.UUID, req model.ReplaceQuestionsRequest) error {
	test, err := s.Get(ctx, testID)
	if err != nil {
		return err
	}

	questions := make([]model.Question, 0, len(req.Questions))
	present := make(map[string]struct{}, len(req.Questions))
	for i, p := range req.Questions {
		if _, dup := present[p.Identifier]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateQuestion, p.Identifier)
		}
		present[p.Identifier] = struct{}{}
		questions = append(questions, model.Question{
			TestID:     testID,
			Identifier: p.Identifier,
			Position:   i,
			Content:    p.Content,
		})
	}

	for _, sec := range test.Spec.Sections {
		for _, id := range sec.ItemIdentifiers {
			if _, ok := present[id]; !ok {
				return &rotation.MissingReferenceError{Identifier: id, Section: sec.Identifier}
			}
		}
	}

	if err := s.questions.ReplaceForTest(ctx, testID, questions); err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, testID)
	}

	s.log.Info().
		Str("test_id", testID.String()).
		Int("questions", len(questions)).
		Msg("Question bank replaced")
	return nil
}
