package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserSourcedID string `json:"user_sourced_id" binding:"required,max=16,sourcedid"`
	Attempt       int    `json:"attempt_number" binding:"required,min=1"`
}

func TestSetup_TranslatesAndValidatesSourcedIDs(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&sample{UserSourcedID: "learner-1", Attempt: 2})
	require.NoError(t, err)

	err = binding.Validator.ValidateStruct(&sample{UserSourcedID: " learner-1", Attempt: 0})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Contains(t, fields, "user_sourced_id")
	assert.Contains(t, fields["user_sourced_id"], "control characters")
	assert.Contains(t, fields, "attempt_number")

	err = binding.Validator.ValidateStruct(&sample{UserSourcedID: "a\tb", Attempt: 1})
	assert.Error(t, err)
}
