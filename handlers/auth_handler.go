package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/upb/auth-gateway/middleware"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/services"
	"github.com/upb/auth-gateway/services/account"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// AccountService drives the identity lifecycle endpoints
type AccountService interface {
	Signup(ctx context.Context, in account.SignupInput) (*models.UserProfile, error)
	Signin(ctx context.Context, in account.SigninInput) (*account.SigninResult, error)
	Signout(ctx context.Context, uid string, revokeAll bool) (bool, error)
	SetEmailVerified(ctx context.Context, uid string, verified bool) error
}

// UserSummary is the user object returned by signup and signin
type UserSummary struct {
	UID       string          `json:"uid"`
	Email     string          `json:"email,omitempty"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

type signoutRequest struct {
	RevokeAllTokens bool `json:"revokeAllTokens"`
}

type verifyEmailRequest struct {
	EmailVerified interface{} `json:"emailVerified"`
}

// AuthHandler handles the signup, signin, signout and email verification routes
type AuthHandler struct {
	accounts AccountService
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// HandleSignup handles POST /api/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in account.SignupInput
	if !h.decode(w, r, &in) {
		return
	}

	created, err := h.accounts.Signup(r.Context(), in)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, map[string]interface{}{
		"message": "User created successfully",
		"user": UserSummary{
			UID:       created.UID,
			Email:     created.Email,
			Name:      created.Name,
			Role:      created.Role,
			CreatedAt: created.CreatedAt,
		},
	})
}

// HandleSignin handles POST /api/auth/signin
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var in account.SigninInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.accounts.Signin(r.Context(), in)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "Sign-in successful",
		"token":   res.Token,
		"user": UserSummary{
			UID:   res.Profile.UID,
			Email: res.Profile.Email,
			Name:  res.Profile.Name,
			Role:  res.Profile.Role,
		},
	})
}

// HandleSignout handles POST /api/auth/signout. An empty body is allowed.
func (h *AuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	current := middleware.GetProfileFromContext(r.Context())
	if current == nil {
		HandleServiceError(w, services.ErrAuthRequired, h.logger)
		return
	}

	var req signoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	revoked, err := h.accounts.Signout(r.Context(), current.UID, req.RevokeAllTokens)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message":       "Successfully signed out",
		"revokedTokens": revoked,
	})
}

// HandleVerifyEmail handles PATCH /api/auth/verify-email
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	current := middleware.GetProfileFromContext(r.Context())
	if current == nil {
		HandleServiceError(w, services.ErrAuthRequired, h.logger)
		return
	}

	var req verifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	verified, ok := req.EmailVerified.(bool)
	if !ok {
		HandleServiceError(w, services.ErrInvalidEmailVerified, h.logger)
		return
	}

	if err := h.accounts.SetEmailVerified(r.Context(), current.UID, verified); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"message":       "Email verification status updated",
		"emailVerified": verified,
	})
}

// decode reads an optional JSON body into dst, answering 400 on malformed input
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(r, dst); err != nil && !errors.Is(err, utils.ErrEmptyBody) {
		h.logger.Debug("malformed request body",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		HandleServiceError(w, services.ErrInvalidRequestBody, h.logger)
		return false
	}
	return true
}
