package keysetpager

import (
	"errors"
	"fmt"
)

// ValidationError reports a request shape the pager cannot serve: an
// unsupported ordering, conflicting page sizes and the like. It is always
// returned before any query is issued.
type ValidationError struct {
	Reason string
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return "invalid pagination request: " + e.Reason
}

// CursorError reports a before/after token that cannot be decoded or lacks
// the values needed to seek.
type CursorError struct {
	Token string
	Err   error
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("invalid cursor: %v", e.Err)
}

func (e *CursorError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsCursorError reports whether err carries a *CursorError.
func IsCursorError(err error) bool {
	var target *CursorError
	return errors.As(err, &target)
}
