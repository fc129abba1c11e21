package errors

import (
	"errors"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error kinds. Match with errors.Is, never by message.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRelated    = errors.New("already related")
	ErrNotRelated        = errors.New("not related")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// AppError carries one error kind plus a human-readable message.
// Cause holds the lower-level error when there is one.
type AppError struct {
	Err     error
	Message string
	Field   string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// AlreadyRelated reports an idempotent add that found the relation present.
func AlreadyRelated(relation, id string) *AppError {
	return &AppError{
		Err:     ErrAlreadyRelated,
		Message: fmt.Sprintf("%s already exists for %s", relation, id),
	}
}

// NotRelated reports an idempotent remove that found nothing to remove.
func NotRelated(relation, id string) *AppError {
	return &AppError{
		Err:     ErrNotRelated,
		Message: fmt.Sprintf("%s does not exist for %s", relation, id),
	}
}

func AlreadyExists(resource, field string) *AppError {
	return &AppError{
		Err:     ErrAlreadyExists,
		Message: fmt.Sprintf("%s with this %s already exists", resource, field),
		Field:   field,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Unavailable(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrRemoteUnavailable,
		Message: op + " failed",
		Cause:   cause,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %s was modified concurrently", resource, id),
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func InvalidState(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidState,
		Message: message,
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// FromValidation turns ozzo-validation output into a ValidationFailed error
// naming the first offending field (alphabetical, for stable messages).
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationFailed("", err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for f := range verrs {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	first := fields[0]
	return ValidationFailed(first, fmt.Sprintf("%s: %s", first, verrs[first].Error()))
}
