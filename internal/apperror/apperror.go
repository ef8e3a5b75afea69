// Package apperror defines the error taxonomy shared by every layer.
//
// Each constructor returns an *AppError that wraps one of the sentinel
// errors below. Callers never compare messages; they ask errors.Is:
//
//	errors.Is(err, apperror.ErrNotFound)    → 404
//	errors.Is(err, apperror.ErrValidation)  → 400
//	errors.Is(err, apperror.ErrPersistence) → 500
//	errors.Is(err, apperror.ErrConnectivity) → 503
//	errors.Is(err, apperror.ErrTooLarge)    → 413
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrPersistence  = errors.New("persistence error")
	ErrConnectivity = errors.New("connectivity error")
	ErrTooLarge     = errors.New("request too large")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message, safe to return to clients
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is can match
// either of them.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Persistence wraps a failed database operation.
// HTTP handlers map this to 500 Internal Server Error.
func Persistence(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Message: message,
		Cause:   cause,
	}
}

// Connectivity reports that the database could not be reached at all.
// HTTP handlers map this to 503 Service Unavailable.
func Connectivity(cause error) *AppError {
	return &AppError{
		Err:     ErrConnectivity,
		Message: "Database unreachable",
		Cause:   cause,
	}
}

// TooLarge reports a request body over the accepted size.
// HTTP handlers map this to 413 Request Entity Too Large.
func TooLarge(limit int64) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: "Request body too large",
		Cause:   fmt.Errorf("body exceeds %d bytes", limit),
	}
}

// Detail returns the underlying cause message, or "" when there is none.
func (e *AppError) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}
