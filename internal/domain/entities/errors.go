package entities

import (
	"errors"
	"fmt"
)

// ErrValidation is the category of every input validation failure.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string // input field that failed validation
	Message string // human readable reason, includes the valid range when there is one
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
