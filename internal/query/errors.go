package query

import (
	"errors"
	"fmt"

	"propcatalog/internal/store"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrMalformedRecord means a stored record lacks a required field.
	ErrMalformedRecord = errors.New("malformed record")

	ErrPattern          = store.ErrPattern
	ErrCancelled        = store.ErrCancelled
	ErrStoreUnavailable = store.ErrUnavailable
)

// ValidationError rejects a request before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedRecord, field)
}
