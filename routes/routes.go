package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/auth-gateway/app"
	"github.com/upb/auth-gateway/handlers"
	"github.com/upb/auth-gateway/internal/observability"
	"github.com/upb/auth-gateway/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(observability.HTTPMetricsMiddleware(deps.Metrics))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(cfg.Server.AllowedOrigins),
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.Profiles, logger)
	public := handlers.NewPublicHandler(cfg.IsMockAuth())
	profiles := handlers.NewProfileHandler(deps.ProfileService, logger)
	accounts := handlers.NewAuthHandler(deps.AccountService, logger)

	requireAuth := deps.AuthMiddleware.RequireAuth
	requireAdmin := deps.RoleGate.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/public", public.HandlePublic)
		r.Get("/ping", public.HandlePing)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", profiles.HandleGetProfile)
			r.Put("/profile", profiles.HandleUpdateProfile)
			r.With(requireAdmin).Get("/admin/dashboard", profiles.HandleAdminDashboard)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", accounts.HandleSignup)
			r.Post("/signin", accounts.HandleSignin)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/signout", accounts.HandleSignout)
				r.Patch("/verify-email", accounts.HandleVerifyEmail)
				r.Get("/verify", profiles.HandleVerifyToken)
			})
		})

		// Developer routes, mock identity provider only
		if deps.MockIdP != nil {
			mockUsers := handlers.NewMockUsersHandler(deps.MockIdP, logger)
			r.Get("/mock/users", mockUsers.HandleList)
			r.Delete("/mock/users", mockUsers.HandleClear)
		}
	})

	r.NotFound(handlers.HandleNotFound)

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
