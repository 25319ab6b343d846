// Package apperr classifies failures into the small set of kinds the API
// surfaces: validation, unauthorized, not found, conflict and internal.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota + 1
	Unauthorized
	NotFound
	Conflict
	Internal
)

// Error carries a user-facing message plus the underlying cause. The cause is
// logged, never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification of err, defaulting to Internal for
// anything that was never classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Message returns the user-facing message for err. Unclassified errors get a
// generic message so internals never leak to clients.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error kind to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
