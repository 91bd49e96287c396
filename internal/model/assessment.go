package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-rotation/internal/rotation"
)

// AssessmentTest is an imported test definition together with the rotation
// rules parsed from it.
type AssessmentTest struct {
	ID         uuid.UUID         `json:"id"`
	Identifier string            `json:"identifier"`
	Title      string            `json:"title"`
	SourceXML  string            `json:"-"`
	Spec       rotation.TestSpec `json:"spec"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ImportTestRequest is the payload for importing an assessment-test document.
type ImportTestRequest struct {
	Title  string `json:"title" binding:"omitempty,max=255"`
	QTIXML string `json:"qti_xml" binding:"required,min=1"`
}
