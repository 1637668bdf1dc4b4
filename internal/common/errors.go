package common

import (
	"errors"
	"fmt"
)

var (
	// session errors
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveSession    = errors.New("no active session")

	// conversation and generation errors
	ErrThreadNotFound = errors.New("thread not found")
	ErrEmptyPrompt    = errors.New("empty prompt")

	// input errors; callers wrap with the offending field
	ErrValidation = errors.New("validation error")

	// ErrPersistenceRead is absorbed by the store adapter and never returned
	// from an engine operation.
	ErrPersistenceRead = errors.New("persistence read error")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// snapshot errors
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// ValidationError reports a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
