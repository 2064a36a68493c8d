package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/auth-gateway/repositories"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store  repositories.ProfileStore
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store repositories.ProfileStore, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
// Readiness check - pings the profile store when it is backed by a remote service
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if err := h.checkStore(ctx); err != nil {
		h.logger.Warn("profile store health check failed", zap.Error(err))
		checks["profile_store"] = "unhealthy"
		allHealthy = false
	} else {
		checks["profile_store"] = "healthy"
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) checkStore(ctx context.Context) error {
	if checker, ok := h.store.(repositories.HealthChecker); ok {
		return checker.Ping(ctx)
	}
	return nil
}
