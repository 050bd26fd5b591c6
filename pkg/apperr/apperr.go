// Package apperr defines the error kinds services return to the HTTP layer.
//
// A service wraps a kind with a client-facing message:
//
//	return apperr.New(apperr.ErrConflict, "A merchant with this email already exists")
//
// and the transport maps the kind to a status code with errors.Is. Anything
// that is not an *Error is treated as internal.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Error carries a kind, a message safe to show to clients and optional
// per-field details.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// New builds an *Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation builds a validation error with field details.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// Status maps err to an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether err carries a message that may reach the client.
func Public(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
