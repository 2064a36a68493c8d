package handlers

import (
	"net/http"

	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// UserDirectory lists and clears the users of an in-memory identity provider
type UserDirectory interface {
	List() []models.UserRecord
	Clear() int
}

// MockUsersHandler serves the developer routes under /api/mock. It is only
// mounted when the mock identity provider is active.
type MockUsersHandler struct {
	users  UserDirectory
	logger *zap.Logger
}

// NewMockUsersHandler creates a new MockUsersHandler
func NewMockUsersHandler(users UserDirectory, logger *zap.Logger) *MockUsersHandler {
	return &MockUsersHandler{
		users:  users,
		logger: logger,
	}
}

// HandleList handles GET /api/mock/users
func (h *MockUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users := h.users.List()
	if users == nil {
		users = []models.UserRecord{}
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// HandleClear handles DELETE /api/mock/users. Stored profiles are untouched.
func (h *MockUsersHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	count := h.users.Clear()
	h.logger.Info("mock users cleared", zap.Int("count", count))

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "All users cleared",
		"count":   count,
	})
}
