package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-gateway/services"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"profile not found", services.ErrProfileNotFound, http.StatusNotFound, "User profile not found."},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "User not found."},
		{"validation", services.ErrPasswordTooShort, http.StatusBadRequest, "Password must be at least 6 characters long."},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password."},
		{"no token", services.ErrNoToken, http.StatusUnauthorized, "Unauthorized: No token provided."},
		{"invalid token", services.ErrInvalidToken, http.StatusForbidden, "Forbidden: Invalid token."},
		{"insufficient permissions", services.ErrInsufficientPermissions, http.StatusForbidden, "Forbidden: Insufficient permissions."},
		{"conflict", services.ErrEmailExists, http.StatusConflict, "Email already exists."},
		{"wrapped internal hides cause", services.ErrSignInFailed.Wrap(errors.New("secret upstream detail")), http.StatusInternalServerError, "Sign-in failed."},
		{"fmt wrapped domain error", fmt.Errorf("update: %w", services.ErrUpdateProfileFailed), http.StatusInternalServerError, "Failed to update profile."},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"error": tt.wantError}, body)
		})
	}
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())
	assert.Empty(t, w.Body.String())
}
