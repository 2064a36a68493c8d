package middleware

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/upb/auth-gateway/models"
)

// Context key type to avoid collisions
type contextKey string

// ProfileKey is the context key for the authenticated user's profile
const ProfileKey contextKey = "user_profile"

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// GetProfileFromContext retrieves the authenticated profile from context
func GetProfileFromContext(ctx context.Context) *models.UserProfile {
	if val := ctx.Value(ProfileKey); val != nil {
		if profile, ok := val.(*models.UserProfile); ok {
			return profile
		}
	}
	return nil
}

// WithProfile adds the authenticated profile to the context
func WithProfile(ctx context.Context, profile *models.UserProfile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}
