package booking

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced booking does not exist.
var ErrNotFound = errors.New("booking not found")

// ValidationError marks malformed input (missing ids, non-future dates,
// invalid duration). No side effects have occurred.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks a slot that is no longer available, an overlapping
// booking or a violated lead-time policy. The caller should re-query
// availability.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// PermissionError marks a caller that is neither party on the booking.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

func NewPermissionError(format string, args ...interface{}) error {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}
