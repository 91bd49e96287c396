package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Question is one resolved item of a test's question bank. Content is opaque
// to rotation and returned to the learner as stored.
type Question struct {
	TestID     uuid.UUID       `json:"-"`
	Identifier string          `json:"identifier"`
	Position   int             `json:"position"`
	Content    json.RawMessage `json:"content"`
}

// QuestionPayload is one question of a ReplaceQuestionsRequest.
type QuestionPayload struct {
	Identifier string          `json:"identifier" binding:"required,min=1,max=255"`
	Content    json.RawMessage `json:"content" binding:"required"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing a test's question bank.
type ReplaceQuestionsRequest struct {
	Questions []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}
