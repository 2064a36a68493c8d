package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "User profile not found.",
				Err:     errors.New("redis down"),
			},
			wantMsg: "not_found: User profile not found. (redis down)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "Invalid email format.",
			},
			wantMsg: "validation: Invalid email format.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Wrap(t *testing.T) {
	cause := errors.New("store unavailable")
	wrapped := ErrCreateUserFailed.Wrap(cause)

	assert.ErrorIs(t, wrapped, ErrCreateUserFailed)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, ErrCreateUserFailed.Err, "sentinel must not be mutated")
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same type and message",
			err:    ErrProfileNotFound.Wrap(errors.New("x")),
			target: ErrProfileNotFound,
			want:   true,
		},
		{
			name:   "same type different message",
			err:    ErrUserNotFound,
			target: ErrProfileNotFound,
			want:   false,
		},
		{
			name:   "different error type",
			err:    ErrInvalidEmail,
			target: ErrProfileNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    ErrProfileNotFound,
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	detailed := err.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", detailed.Details["field"])
	assert.Equal(t, "invalid-email", detailed.Details["value"])
	assert.Empty(t, err.Details)
	assert.ErrorIs(t, detailed, err)
}

func TestDomainError_WithDetailLeavesSentinelUntouched(t *testing.T) {
	detailed := ErrProfileNotFound.WithDetail("uid", "u1")

	assert.Equal(t, "u1", detailed.Details["uid"])
	assert.NotContains(t, ErrProfileNotFound.Details, "uid")
	assert.ErrorIs(t, detailed, ErrProfileNotFound)

	wrapped := ErrSignOutFailed.Wrap(errors.New("boom")).WithDetail("uid", "u2")
	assert.NotContains(t, ErrSignOutFailed.Details, "uid")
	assert.Equal(t, "u2", GetErrorDetails(wrapped)["uid"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrProfileNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", ErrUserNotFound), IsNotFoundError, true},
		{"validation", ErrPasswordTooShort, IsValidationError, true},
		{"validation is not not-found", ErrInvalidEmail, IsNotFoundError, false},
		{"unauthorized", ErrInvalidCredentials, IsUnauthorizedError, true},
		{"forbidden", ErrInsufficientPermissions, IsForbiddenError, true},
		{"invalid token is forbidden", ErrInvalidToken, IsForbiddenError, true},
		{"conflict", ErrEmailExists, IsConflictError, true},
		{"internal", ErrSignInFailed, IsInternalError, true},
		{"regular error", errors.New("regular"), IsInternalError, false},
		{"nil error", nil, IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrProfileNotFound, ErrorTypeNotFound},
		{"validation", ErrWeakPassword, ErrorTypeValidation},
		{"conflict", ErrEmailExists, ErrorTypeConflict},
		{"regular error", errors.New("regular"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "Sign-out failed.", GetErrorMessage(ErrSignOutFailed.Wrap(errors.New("boom"))))
	assert.Empty(t, GetErrorMessage(errors.New("plain")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil).
		WithDetail("field", "email").
		WithDetail("reason", "invalid format")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "email", details["field"])
	assert.Equal(t, "invalid format", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}
