package middleware

import (
	"net/http"

	"github.com/upb/auth-gateway/internal/observability"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/services"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// RoleGate admits requests whose attached profile holds one of a set of roles
type RoleGate struct {
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewRoleGate creates a new RoleGate. metrics may be nil.
func NewRoleGate(metrics *observability.Metrics, logger *zap.Logger) *RoleGate {
	return &RoleGate{metrics: metrics, logger: logger}
}

// RequireRole must run after RequireAuth. Without a profile the request is
// 401, with a role outside roles it is 403.
func (g *RoleGate) RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	allowed := make([]models.UserRole, len(roles))
	copy(allowed, roles)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			profile := GetProfileFromContext(ctx)
			if profile == nil {
				g.logger.Warn("role check without authenticated profile",
					zap.String("request_id", requestID))
				_ = utils.WriteError(w, http.StatusUnauthorized, services.ErrAuthRequired.Message)
				return
			}

			if !profile.HasAnyRole(allowed...) {
				g.metrics.RecordRoleDenial(string(profile.Role))
				g.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("uid", profile.UID),
					zap.String("role", string(profile.Role)))
				_ = utils.WriteError(w, http.StatusForbidden, services.ErrInsufficientPermissions.Message)
				return
			}

			g.logger.Debug("role check passed",
				zap.String("request_id", requestID),
				zap.String("role", string(profile.Role)))

			next.ServeHTTP(w, r)
		})
	}
}
