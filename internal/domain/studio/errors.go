package studio

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTask is returned for an unrecognized task kind.
	ErrUnknownTask = errors.New("unknown task kind")

	// ErrInvalidRequest is the sentinel wrapped by every validation failure.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrNoImages is returned when the model reports success but produces
	// no images, which Nova Canvas does when content is filtered.
	ErrNoImages = errors.New("no image produced by the model")

	// ErrModelUnavailable is returned when the circuit to the remote
	// endpoint is open.
	ErrModelUnavailable = errors.New("model endpoint unavailable")
)

// ValidationError describes a single failed precondition on a Request.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap makes every validation error match ErrInvalidRequest.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ModelError describes a failure reported by the remote endpoint or a
// malformed response. It is never retried; the message is surfaced to the
// user as-is.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a model error for the given operation.
func NewModelError(op, message string, err error) *ModelError {
	return &ModelError{Op: op, Message: message, Err: err}
}
