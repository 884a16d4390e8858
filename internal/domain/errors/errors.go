package errors

import (
	"errors"
	"fmt"
)

var (
	// Payment errors
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotRetryable           = errors.New("only failed payments can be retried")
	ErrMaxAttemptsReached     = errors.New("max attempts reached")

	// Provider errors
	ErrProviderNotFound = errors.New("provider not found")
	ErrProviderInactive = errors.New("provider inactive")
	ErrProviderMissing  = errors.New("provider missing")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// ValidationError represents a single-field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
