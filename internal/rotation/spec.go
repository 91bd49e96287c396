package rotation

// SectionSpec is one section of an assessment test: an ordered bank of item
// identifiers plus its ordering and selection rules.
type SectionSpec struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Shuffle    bool   `json:"shuffle,omitempty" yaml:"shuffle"`
	// SelectCount is nil when the section selects every item.
	SelectCount     *int     `json:"select_count,omitempty" yaml:"select"`
	ItemIdentifiers []string `json:"item_identifiers" yaml:"items"`
}

// TestSpec is the flattened, document-ordered list of sections of a test.
// A TestSpec without sections passes the question bank through unchanged.
type TestSpec struct {
	Sections []SectionSpec `json:"sections" yaml:"sections"`
}

// Request identifies a single attempt of a single learner on a single resource.
type Request struct {
	BaseSeed          string `json:"base_seed"`
	AttemptNumber     int    `json:"attempt_number"`
	UserSourcedID     string `json:"user_sourced_id,omitempty"`
	ResourceSourcedID string `json:"resource_sourced_id,omitempty"`
}

// Validate re-checks the invariants the upstream parser is expected to enforce.
func (s TestSpec) Validate() error {
	for _, sec := range s.Sections {
		if err := sec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single section: positive select count, unique item identifiers.
func (s SectionSpec) Validate() error {
	if s.SelectCount != nil && *s.SelectCount < 1 {
		return violation(s.Identifier, "select count must be at least 1, got %d", *s.SelectCount)
	}
	seen := make(map[string]struct{}, len(s.ItemIdentifiers))
	for _, id := range s.ItemIdentifiers {
		if _, dup := seen[id]; dup {
			return violation(s.Identifier, "duplicate item identifier %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Validate rejects attempt numbers below 1.
func (r Request) Validate() error {
	if r.AttemptNumber < 1 {
		return violation("", "attempt number must be at least 1, got %d", r.AttemptNumber)
	}
	return nil
}

// SelectCountOf is a helper for building SectionSpec literals.
func SelectCountOf(n int) *int {
	return &n
}
