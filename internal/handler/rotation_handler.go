package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exstem-rotation/internal/middleware"
	"github.com/stemsi/exstem-rotation/internal/model"
	"github.com/stemsi/exstem-rotation/internal/response"
	"github.com/stemsi/exstem-rotation/internal/rotation"
	"github.com/stemsi/exstem-rotation/internal/service"
	"github.com/stemsi/exstem-rotation/internal/validator"
)

// Selector produces question selections for a stored test.
type Selector interface {
	Select(ctx context.Context, testID uuid.UUID, req rotation.Request) (*model.Selection, error)
	Preview(ctx context.Context, testID uuid.UUID, req rotation.Request, attempts int) (*model.Preview, error)
}

// AttemptCounter hands out attempt numbers per learner and resource.
type AttemptCounter interface {
	Next(ctx context.Context, testID uuid.UUID, userSourcedID, resourceSourcedID string) (int, error)
}

// RotationHandler serves question selections to delivery clients.
type RotationHandler struct {
	selector Selector
	attempts AttemptCounter
}

// NewRotationHandler creates a new RotationHandler.
func NewRotationHandler(selector Selector, attempts AttemptCounter) *RotationHandler {
	return &RotationHandler{selector: selector, attempts: attempts}
}

// Select godoc
// POST /api/v1/rotation/tests/:test_id/selection
// Returns the questions of an explicit attempt number. Repeating a request
// returns the same selection.
func (h *RotationHandler) Select(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.SelectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, ok := learnerID(c, req.UserSourcedID)
	if !ok {
		return
	}

	sel, err := h.selector.Select(c.Request.Context(), testID, rotation.Request{
		BaseSeed:          req.BaseSeed,
		AttemptNumber:     req.AttemptNumber,
		UserSourcedID:     user,
		ResourceSourcedID: req.ResourceSourcedID,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"selection": sel})
}

// StartAttempt godoc
// POST /api/v1/rotation/tests/:test_id/attempts
// Advances the learner's attempt counter and returns that attempt's questions.
func (h *RotationHandler) StartAttempt(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, ok := learnerID(c, req.UserSourcedID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	attempt, err := h.attempts.Next(ctx, testID, user, req.ResourceSourcedID)
	if err != nil {
		failFromError(c, err)
		return
	}

	sel, err := h.selector.Select(ctx, testID, rotation.Request{
		BaseSeed:          req.BaseSeed,
		AttemptNumber:     attempt,
		UserSourcedID:     user,
		ResourceSourcedID: req.ResourceSourcedID,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"selection": sel})
}

// learnerID resolves whose attempt is being served. Student tokens always act
// for their own user; admin tokens may act for any learner.
func learnerID(c *gin.Context, requested string) (string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", false
	}
	if claims.TokenType != service.TokenTypeStudent {
		return requested, true
	}
	if requested != "" && requested != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return "", false
	}
	return claims.UserID, true
}
