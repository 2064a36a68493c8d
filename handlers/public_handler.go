package handlers

import (
	"net/http"

	"github.com/upb/auth-gateway/utils"
)

// PublicHandler serves the unauthenticated routes
type PublicHandler struct {
	mockMode bool
}

// NewPublicHandler creates a new PublicHandler. mockMode marks ping replies.
func NewPublicHandler(mockMode bool) *PublicHandler {
	return &PublicHandler{mockMode: mockMode}
}

// HandlePublic handles GET /api/public
func (h *PublicHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteMessage(w, "This is a public endpoint.")
}

// HandlePing handles GET /api/ping
func (h *PublicHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if h.mockMode {
		_ = utils.WriteMessage(w, "pong (mock)")
		return
	}
	_ = utils.WriteMessage(w, "pong")
}

// HandleNotFound answers unknown routes
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteError(w, http.StatusNotFound, "endpoint not found")
}
