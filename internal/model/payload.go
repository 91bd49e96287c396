package model

// TestPayload is the cached fast-lane copy of a test definition and its bank.
type TestPayload struct {
	Test      AssessmentTest `json:"test"`
	Questions []Question     `json:"questions"`
}
