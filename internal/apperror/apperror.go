package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrDivisionByZero = errors.New("division by zero")
	ErrStorage        = errors.New("storage error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying engine/driver error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// either apperror.ErrStorage or e.g. context.Canceled on the same value.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return NotFoundBy(resource, "id", id)
}

// NotFoundBy is NotFound for a lookup keyed on a field other than the id.
func NotFoundBy(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with %s %s", resource, field, value),
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

// Conflict reports a uniqueness violation on the given field value.
func Conflict(resource, field, value string, cause error) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with %s %s already exists", resource, field, value),
		Field:   field,
		Cause:   cause,
	}
}

func DivisionByZero() *AppError {
	return &AppError{
		Err:     ErrDivisionByZero,
		Message: "division by zero",
	}
}

// StorageFailed wraps a storage engine failure that happened during op.
// HTTP handlers map this to 500 and never echo the cause to clients.
func StorageFailed(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: op,
		Cause:   cause,
	}
}
