package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks requests rejected before any resource was allocated.
	ErrValidation = errors.New("validation error")
	// ErrInfrastructure marks failures where no judgment of the submitted
	// code was possible: spawn errors, workspace errors, missing toolchains.
	ErrInfrastructure = errors.New("infrastructure error")
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

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// UnsupportedLanguage is a validation failure for a language outside the
// supported set.
func UnsupportedLanguage(language string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("unsupported language %q", language),
		Field:   "language",
	}
}

// Infrastructure wraps a system-level failure so handlers can distinguish it
// from judged outcomes. HTTP handlers map this to 500.
func Infrastructure(message string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInfrastructure, err),
		Message: message,
	}
}
