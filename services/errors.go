package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context.
// Message is safe to return to clients; Err is only ever logged.
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

// Is matches domain errors of the same type and message
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// Wrap returns a copy of e carrying cause. Sentinels are never mutated.
func (e *DomainError) Wrap(cause error) *DomainError {
	c := *e
	c.Err = cause
	return &c
}

// WithDetail returns a copy of e with key set in its details
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := *e
	c.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		c.Details[k] = v
	}
	c.Details[key] = value
	return &c
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

// Domain error variables. Messages are the exact client-facing strings.

var (
	// Not Found Errors
	ErrProfileNotFound = NewDomainError(ErrorTypeNotFound, "User profile not found.", nil)
	ErrUserNotFound    = NewDomainError(ErrorTypeNotFound, "User not found.", nil)

	// Validation Errors
	ErrCredentialsRequired  = NewDomainError(ErrorTypeValidation, "Email and password are required.", nil)
	ErrInvalidEmail         = NewDomainError(ErrorTypeValidation, "Invalid email format.", nil)
	ErrPasswordTooShort     = NewDomainError(ErrorTypeValidation, "Password must be at least 6 characters long.", nil)
	ErrWeakPassword         = NewDomainError(ErrorTypeValidation, "Password is too weak.", nil)
	ErrInvalidEmailVerified = NewDomainError(ErrorTypeValidation, "emailVerified must be a boolean value.", nil)
	ErrInvalidRequestBody   = NewDomainError(ErrorTypeValidation, "Invalid request body.", nil)

	// Authorization Errors
	ErrNoToken            = NewDomainError(ErrorTypeUnauthorized, "Unauthorized: No token provided.", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "Invalid email or password.", nil)
	ErrAuthRequired       = NewDomainError(ErrorTypeUnauthorized, "Authentication required.", nil)

	// Permission Errors
	ErrInvalidToken            = NewDomainError(ErrorTypeForbidden, "Forbidden: Invalid token.", nil)
	ErrInsufficientPermissions = NewDomainError(ErrorTypeForbidden, "Forbidden: Insufficient permissions.", nil)

	// Conflict Errors
	ErrEmailExists = NewDomainError(ErrorTypeConflict, "Email already exists.", nil)

	// Internal Errors
	ErrInternal            = NewDomainError(ErrorTypeInternal, "Internal server error.", nil)
	ErrCreateUserFailed    = NewDomainError(ErrorTypeInternal, "Failed to create user.", nil)
	ErrSignInFailed        = NewDomainError(ErrorTypeInternal, "Sign-in failed.", nil)
	ErrSignOutFailed       = NewDomainError(ErrorTypeInternal, "Sign-out failed.", nil)
	ErrUpdateProfileFailed = NewDomainError(ErrorTypeInternal, "Failed to update profile.", nil)
	ErrEmailVerifyFailed   = NewDomainError(ErrorTypeInternal, "Failed to update email verification status.", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

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

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorMessage returns the client-facing message of a domain error, or empty string
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
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
