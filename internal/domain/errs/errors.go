// Package errs holds the error taxonomy shared by stores, services and handlers.
// Match with errors.Is against the Err* sentinels.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("not authorized")
	ErrSelfReference = errors.New("self reference")
	ErrConflict      = errors.New("conflict")
	ErrMediaStore    = errors.New("media store error")
	ErrStore         = errors.New("store error")
)

// Error carries a user-facing message alongside its kind and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel so errors.Is(err, ErrNotFound) works on wrapped values.
func (e *Error) Is(target error) bool { return e.Kind == target }

func newf(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func Validation(format string, args ...any) error {
	return newf(ErrValidation, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, nil, format, args...)
}

func Authorization(format string, args ...any) error {
	return newf(ErrAuthorization, nil, format, args...)
}

func SelfReference(format string, args ...any) error {
	return newf(ErrSelfReference, nil, format, args...)
}

func Conflict(format string, args ...any) error {
	return newf(ErrConflict, nil, format, args...)
}

func MediaStore(cause error, format string, args ...any) error {
	return newf(ErrMediaStore, cause, format, args...)
}

// Store wraps a persistence failure. Errors that already carry a kind pass through.
func Store(cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return newf(ErrStore, cause, format, args...)
}

// Message returns the user-facing message of err, or "" for errors outside the taxonomy.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
