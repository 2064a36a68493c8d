package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/auth-gateway/internal/observability"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/services"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// TokenVerifier verifies a bearer token with the identity provider
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.DecodedToken, error)
}

// ProfileReconciler returns the stored profile for a verified token,
// creating it on first sight
type ProfileReconciler interface {
	Reconcile(ctx context.Context, token *models.DecodedToken) (*models.UserProfile, bool, error)
}

// AuthMiddleware authenticates bearer tokens and attaches the caller's profile
type AuthMiddleware struct {
	verifier TokenVerifier
	profiles ProfileReconciler
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. metrics may be nil.
func NewAuthMiddleware(verifier TokenVerifier, profiles ProfileReconciler, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
	}
}

// RequireAuth requires an "Authorization: Bearer <token>" header. A missing
// or malformed header is 401, any verification failure is 403. On success
// the stored profile is attached to the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token, ok := extractBearerToken(r)
		if !ok {
			m.metrics.RecordAuth(observability.OutcomeMissingToken)
			m.logger.Warn("missing bearer token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteError(w, http.StatusUnauthorized, services.ErrNoToken.Message)
			return
		}

		decoded, err := m.verifier.VerifyToken(ctx, token)
		if err != nil {
			m.metrics.RecordAuth(observability.OutcomeInvalidToken)
			m.logger.Warn("token verification failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteError(w, http.StatusForbidden, services.ErrInvalidToken.Message)
			return
		}

		profile, created, err := m.profiles.Reconcile(ctx, decoded)
		if err != nil {
			m.metrics.RecordAuth(observability.OutcomeError)
			m.logger.Error("profile reconciliation failed",
				zap.String("request_id", requestID),
				zap.String("uid", decoded.UID),
				zap.Error(err))
			_ = utils.WriteError(w, http.StatusInternalServerError, services.ErrInternal.Message)
			return
		}
		if created {
			m.metrics.RecordProvisioned()
		}
		m.metrics.RecordAuth(observability.OutcomeAuthenticated)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("uid", profile.UID),
			zap.String("role", string(profile.Role)))

		ctx = WithProfile(ctx, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken returns the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-sensitively with a single space.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}
	return authHeader[len(bearerPrefix):], true
}
