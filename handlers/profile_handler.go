package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/upb/auth-gateway/middleware"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/services"
	"github.com/upb/auth-gateway/services/profile"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// ProfileUpdater applies a partial update to a stored profile
type ProfileUpdater interface {
	Update(ctx context.Context, uid string, upd profile.Update) (*models.UserProfile, error)
}

// ProfileHandler serves the authenticated profile routes
type ProfileHandler struct {
	profiles ProfileUpdater
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles ProfileUpdater, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// HandleGetProfile handles GET /api/profile
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message":     fmt.Sprintf("Welcome, %s!", current.DisplayName()),
		"userProfile": current,
	})
}

// HandleUpdateProfile handles PUT /api/profile
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	var upd profile.Update
	if err := utils.DecodeJSON(r, &upd); err != nil && !errors.Is(err, utils.ErrEmptyBody) {
		HandleServiceError(w, services.ErrInvalidRequestBody, h.logger)
		return
	}

	updated, err := h.profiles.Update(r.Context(), current.UID, upd)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": updated,
	})
}

// HandleAdminDashboard handles GET /api/admin/dashboard. The role gate runs first.
func (h *ProfileHandler) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message":   "Welcome to the Admin Dashboard!",
		"adminUser": current,
	})
}

// HandleVerifyToken handles GET /api/auth/verify
func (h *ProfileHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	current, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "Token is valid",
		"user":    current,
	})
}

func (h *ProfileHandler) requireProfile(w http.ResponseWriter, r *http.Request) (*models.UserProfile, bool) {
	current := middleware.GetProfileFromContext(r.Context())
	if current == nil {
		HandleServiceError(w, services.ErrAuthRequired, h.logger)
		return nil, false
	}
	return current, true
}
