package study

import (
	"errors"
	"fmt"
)

// Validation errors for RawInput.
var (
	ErrEmptyTopic       = errors.New("topic is empty")
	ErrEmptyExplanation = errors.New("explanation is empty")
	ErrOutOfRange       = errors.New("value out of range")
)

// ValidationError reports which input field failed validation.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
