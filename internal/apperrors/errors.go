// Package apperrors provides the structured error type used across rewindex.
//
// Each error kind is a distinct, matchable value so CLI and HTTP front ends
// can map it to the right exit code or status code without string-sniffing.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds distinct at the public boundary.
type Kind string

const (
	// KindBackendUnreachable means a network/DNS/connection failure talking
	// to the search backend. Never retried inside the core.
	KindBackendUnreachable Kind = "backend-unreachable"
	// KindBackendReportedError means the backend returned an error response;
	// the body is preserved in Details for diagnostics.
	KindBackendReportedError Kind = "backend-reported-error"
	// KindInvalidArgument means caller-supplied input failed validation.
	KindInvalidArgument Kind = "invalid-argument"
	// KindNotFound means an explicit absent lookup (file, version, hash).
	KindNotFound Kind = "not-found"
	// KindIOError means a filesystem read/write failure during scan or restore.
	KindIOError Kind = "io-error"
	// KindParseError means a configuration or restore-input parse failure.
	KindParseError Kind = "parse-error"
	// KindConflict means a destructive operation was refused because the
	// target already exists and overwrite was not requested.
	KindConflict Kind = "conflict"
)

// Error is the structured error type for rewindex. It carries enough
// context for a front end to decide on exit code or HTTP status without
// re-deriving it from the message text.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by Kind, so errors.Is(err, apperrors.New(KindNotFound, "", nil)) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetail adds a key-value diagnostic detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

// InvalidArgument creates a KindInvalidArgument error.
func InvalidArgument(message string) *Error {
	return New(KindInvalidArgument, message, nil)
}

// Conflict creates a KindConflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message, nil)
}

// Wrap wraps an existing error as the given kind. Returns nil if err is nil.
func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(kind, message, err)
}

// KindOf extracts the Kind from an error, or "" if it is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
