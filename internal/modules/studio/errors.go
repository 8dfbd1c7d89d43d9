package studio

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrStudioNotFound = errors.New("studio not found")
	ErrMissingID      = errors.New("studio id is required")
)

// ValidationError lists the fields a request is missing and the fields whose
// values are out of range.
type ValidationError struct {
	Missing []string
	Invalid map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Invalid: map[string]string{}}
}

func (e *ValidationError) missing(field string) {
	e.Missing = append(e.Missing, field)
}

func (e *ValidationError) invalid(field, reason string) {
	e.Invalid[field] = reason
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		keys := make([]string, 0, len(e.Invalid))
		for k := range e.Invalid {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, "invalid: "+strings.Join(keys, ", "))
	}
	return "validation failed (" + strings.Join(parts, "; ") + ")"
}

// Message is the human-readable summary used in the error envelope.
func (e *ValidationError) Message() string {
	if len(e.Missing) > 0 {
		return "Missing required fields"
	}
	return "Invalid field values"
}
