package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-rotation/internal/rotation"
)

// SelectionRequest is the payload for selecting one attempt's questions.
type SelectionRequest struct {
	BaseSeed          string `json:"base_seed" binding:"omitempty,max=255,sourcedid"`
	AttemptNumber     int    `json:"attempt_number" binding:"required,min=1"`
	UserSourcedID     string `json:"user_sourced_id" binding:"omitempty,max=255,sourcedid"`
	ResourceSourcedID string `json:"resource_sourced_id" binding:"omitempty,max=255,sourcedid"`
}

// StartAttemptRequest is the payload for starting a learner's next attempt.
type StartAttemptRequest struct {
	BaseSeed          string `json:"base_seed" binding:"omitempty,max=255,sourcedid"`
	UserSourcedID     string `json:"user_sourced_id" binding:"omitempty,max=255,sourcedid"`
	ResourceSourcedID string `json:"resource_sourced_id" binding:"omitempty,max=255,sourcedid"`
}

// PreviewRequest asks for the first Attempts selections of a learner.
type PreviewRequest struct {
	BaseSeed          string `json:"base_seed" binding:"omitempty,max=255,sourcedid"`
	UserSourcedID     string `json:"user_sourced_id" binding:"omitempty,max=255,sourcedid"`
	ResourceSourcedID string `json:"resource_sourced_id" binding:"omitempty,max=255,sourcedid"`
	Attempts          int    `json:"attempts" binding:"required,min=1"`
}

// Selection is the ordered question set for one attempt.
type Selection struct {
	TestID            uuid.UUID  `json:"test_id"`
	BaseSeed          string     `json:"base_seed"`
	AttemptNumber     int        `json:"attempt_number"`
	UserSourcedID     string     `json:"user_sourced_id,omitempty"`
	ResourceSourcedID string     `json:"resource_sourced_id,omitempty"`
	Identifiers       []string   `json:"identifiers"`
	Questions         []Question `json:"questions"`
}

// Request converts the selection's identity back into an engine request.
func (s *Selection) Request() rotation.Request {
	return rotation.Request{
		BaseSeed:          s.BaseSeed,
		AttemptNumber:     s.AttemptNumber,
		UserSourcedID:     s.UserSourcedID,
		ResourceSourcedID: s.ResourceSourcedID,
	}
}

// SelectionRecord is the persisted audit row of a served selection.
type SelectionRecord struct {
	TestID            string    `json:"test_id"`
	BaseSeed          string    `json:"base_seed"`
	AttemptNumber     int       `json:"attempt_number"`
	UserSourcedID     string    `json:"user_sourced_id"`
	ResourceSourcedID string    `json:"resource_sourced_id"`
	Identifiers       []string  `json:"identifiers"`
	SelectedAt        time.Time `json:"selected_at"`
}

// AttemptPreview is one attempt of a preview.
type AttemptPreview struct {
	AttemptNumber int      `json:"attempt_number"`
	Identifiers   []string `json:"identifiers"`
	// NewIdentifiers counts identifiers not shown in any earlier previewed attempt.
	NewIdentifiers int `json:"new_identifiers"`
	CoveredTotal   int `json:"covered_total"`
}

// Preview is the rotation schedule of a learner over several attempts.
type Preview struct {
	TestID   uuid.UUID              `json:"test_id"`
	Sections []rotation.SectionPlan `json:"sections"`
	Attempts []AttemptPreview       `json:"attempts"`
}
