package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries every violated field of an input, not just the
// first one encountered.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for field := range e.Violations {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func newValidationError() *ValidationError {
	return &ValidationError{Violations: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Violations[field] = message
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
