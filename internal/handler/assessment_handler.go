package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exstem-rotation/internal/model"
	"github.com/stemsi/exstem-rotation/internal/response"
	"github.com/stemsi/exstem-rotation/internal/rotation"
	"github.com/stemsi/exstem-rotation/internal/validator"
)

// Assessments manages stored test definitions and their question banks.
type Assessments interface {
	Import(ctx context.Context, req model.ImportTestRequest) (*model.AssessmentTest, error)
	Get(ctx context.Context, testID uuid.UUID) (*model.AssessmentTest, error)
	ReplaceQuestions(ctx context.Context, testID uuid.UUID, req model.ReplaceQuestionsRequest) error
}

// AssessmentHandler handles admin endpoints for test definitions.
type AssessmentHandler struct {
	assessments Assessments
	selector    Selector
	maxPreview  int
}

// NewAssessmentHandler creates a new AssessmentHandler. Previews are capped
// at maxPreview attempts.
func NewAssessmentHandler(assessments Assessments, selector Selector, maxPreview int) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		selector:    selector,
		maxPreview:  maxPreview,
	}
}

// ImportTest godoc
// POST /api/v1/admin/tests
// Imports a QTI assessment-test document.
func (h *AssessmentHandler) ImportTest(c *gin.Context) {
	var req model.ImportTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.assessments.Import(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// GetTest godoc
// GET /api/v1/admin/tests/:test_id
func (h *AssessmentHandler) GetTest(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	test, err := h.assessments.Get(c.Request.Context(), testID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/tests/:test_id/questions
// Replaces the whole question bank of a test.
func (h *AssessmentHandler) ReplaceQuestions(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.assessments.ReplaceQuestions(c.Request.Context(), testID, req); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": len(req.Questions)})
}

// PreviewRotation godoc
// POST /api/v1/admin/tests/:test_id/preview
// Lists the selections of the first N attempts of one learner.
func (h *AssessmentHandler) PreviewRotation(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.PreviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if h.maxPreview > 0 && req.Attempts > h.maxPreview {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"attempts": "attempts exceeds the preview limit"})
		return
	}

	preview, err := h.selector.Preview(c.Request.Context(), testID, rotation.Request{
		BaseSeed:          req.BaseSeed,
		UserSourcedID:     req.UserSourcedID,
		ResourceSourcedID: req.ResourceSourcedID,
	}, req.Attempts)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"preview": preview})
}
