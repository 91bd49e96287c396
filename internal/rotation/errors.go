package rotation

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrMissingReference  = errors.New("missing question reference")
	ErrContractViolation = errors.New("test definition contract violation")
)

// MissingReferenceError reports an item identifier that a section references
// but the question bank does not contain.
type MissingReferenceError struct {
	Identifier string
	Section    string
}

func (e *MissingReferenceError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("%s: %q", ErrMissingReference, e.Identifier)
	}
	return fmt.Sprintf("%s: %q (section %q)", ErrMissingReference, e.Identifier, e.Section)
}

func (e *MissingReferenceError) Is(target error) bool {
	return target == ErrMissingReference
}

// ContractViolationError reports a malformed test definition or request.
type ContractViolationError struct {
	Section string
	Reason  string
}

func (e *ContractViolationError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("%s: %s", ErrContractViolation, e.Reason)
	}
	return fmt.Sprintf("%s: section %q: %s", ErrContractViolation, e.Section, e.Reason)
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

func violation(section, format string, args ...any) error {
	return &ContractViolationError{Section: section, Reason: fmt.Sprintf(format, args...)}
}
