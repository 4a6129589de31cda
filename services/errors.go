package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeValidation, fmt.Sprintf(format, args...), nil)
}

// Domain error variables

var (
	// Validation Errors
	ErrTooManyRows       = NewDomainError(ErrorTypeValidation, "row count exceeds the configured maximum", nil)
	ErrNoFields          = NewDomainError(ErrorTypeValidation, "at least one field is required", nil)
	ErrCoherentInDataSet = NewDomainError(ErrorTypeValidation, "llm-answer fields are only valid in survey requests", nil)
	ErrInvalidDate       = NewDomainError(ErrorTypeValidation, "date must be formatted as YYYY-MM-DD", nil)

	// Authorization Errors
	ErrUnauthorized  = NewDomainError(ErrorTypeUnauthorized, "authentication required", nil)
	ErrMissingAPIKey = NewDomainError(ErrorTypeUnauthorized, "missing X-API-Key header", nil)

	// Permission Errors
	ErrAdminOnly = NewDomainError(ErrorTypeForbidden, "admin API key required", nil)

	// Internal Errors
	ErrEncodeFailed = NewDomainError(ErrorTypeInternal, "failed to encode spreadsheet", nil)
)

// Error type checking helper functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
