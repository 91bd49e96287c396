package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-rotation/internal/response"
	"github.com/stemsi/exstem-rotation/internal/rotation"
	"github.com/stemsi/exstem-rotation/internal/service"
)

// failFromError maps a service error onto the response envelope.
func failFromError(c *gin.Context, err error) {
	var missing *rotation.MissingReferenceError
	var violation *rotation.ContractViolationError

	switch {
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.As(err, &missing):
		fields := map[string]string{"identifier": missing.Identifier}
		if missing.Section != "" {
			fields["section"] = missing.Section
		}
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrMissingReference, fields)
	case errors.As(err, &violation):
		fields := map[string]string{"reason": violation.Reason}
		if violation.Section != "" {
			fields["section"] = violation.Section
		}
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidTestDefinition, fields)
	case errors.Is(err, service.ErrInvalidDocument):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidTestDefinition,
			map[string]string{"reason": err.Error()})
	case errors.Is(err, service.ErrDuplicateQuestion):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateQuestion)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parseTestID reads the :test_id path parameter. It writes the failure
// response itself and reports false when the id is malformed.
func parseTestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
