// Package apperror defines the domain error kinds shared by every layer.
//
// Repositories and services return *AppError values wrapping one of the
// sentinels below. Handlers use errors.Is to map the sentinel to an HTTP
// status, so the service layer never needs to know about status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing entity. The id is always part of the message so
// callers can tell which reference failed to resolve.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

// Missing reports an absent resource that has no single id, such as a like
// between a film and a user or an already empty collection.
func Missing(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// AlreadyExists reports a duplicate relationship (a second like from the
// same user, an existing friendship). HTTP handlers map this to 409.
func AlreadyExists(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}
