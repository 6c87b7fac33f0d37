// Package apperr defines the error taxonomy shared by every layer of the
// streaming-claim pipeline: repositories, the extraction worker pool, the
// verification pipeline, and the HTTP API.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a job, claim, or blob that is unknown or expired; the
	// HTTP layer maps it to 404. The repositories report an absent record as
	// a nil result rather than this error, and the Stream Orchestrator reports
	// an unknown job as an "error" event.
	ErrNotFound = errors.New("not found")

	// ErrAuth is returned when an upstream LLM credential is rejected (401/403).
	ErrAuth = errors.New("authentication failed")

	// ErrUpstream is returned when the LLM provider fails after retries, or a
	// network-level error prevents a call from completing.
	ErrUpstream = errors.New("upstream request failed")

	// ErrCorruptState is returned when a stored record cannot be decoded.
	// pkg/repository's VerificationRepository.Get returns it for an
	// undecodable record; the Stream Orchestrator then emits the claim
	// without an overlay instead of propagating the error.
	ErrCorruptState = errors.New("corrupt stored state")
)

// ValidationError wraps a field-specific input validation failure
// (InvalidInput in spec.md's error taxonomy).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %q: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
