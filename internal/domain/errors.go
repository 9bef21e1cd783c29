package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a rejected request (bad mode, limit, query or document fields).
	ErrValidation = errors.New("validation failed")
	// ErrStore signals an unreachable document store or a malformed store query.
	ErrStore = errors.New("document store error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrSearchTimeout signals that the request deadline expired before fusion.
	ErrSearchTimeout = errors.New("search timed out")
)

// ValidationError carries the offending field for ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
