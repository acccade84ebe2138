// Package apperror defines the typed failures returned by services and
// repositories. Handlers translate them to HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is any fault not covered by a more specific kind.
	Internal Kind = iota
	// Validation marks malformed or missing input.
	Validation
	// NotFound marks a missing entity.
	NotFound
	// Conflict marks a duplicate natural key or a repeated favorite.
	Conflict
	// Unauthorized marks a missing, invalid or expired credential.
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// AppError is a typed application failure. Message is safe to show to
// clients; Err carries the underlying cause for logs only.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status code for the error kind
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string, err error) *AppError {
	return New(Validation, message, err)
}

func NewNotFound(message string, err error) *AppError {
	return New(NotFound, message, err)
}

func NewConflict(message string, err error) *AppError {
	return New(Conflict, message, err)
}

func NewUnauthorized(message string, err error) *AppError {
	return New(Unauthorized, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(Internal, message, err)
}

// From returns the first *AppError in err's chain.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or Internal when err is not an *AppError.
func KindOf(err error) Kind {
	if appErr, ok := From(err); ok {
		return appErr.Kind
	}
	return Internal
}

func IsValidation(err error) bool   { return err != nil && KindOf(err) == Validation }
func IsNotFound(err error) bool     { return err != nil && KindOf(err) == NotFound }
func IsConflict(err error) bool     { return err != nil && KindOf(err) == Conflict }
func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == Unauthorized }
