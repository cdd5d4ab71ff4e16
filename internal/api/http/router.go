package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-devkit/internal/api/http/handlers"
	"github.com/spec-kit/storefront-devkit/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        fiber.Handler
	// DevRoutes enables unauthenticated token issuance and stored-token lookup. Off unless set.
	DevRoutes bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	sessions := app.Group("/sessions")
	sessions.Post("/verify", cfg.Sessions.Verify)
	sessions.Get("/me", cfg.AuthMiddleware.Handle, cfg.Sessions.Me)

	if cfg.DevRoutes {
		sessions.Post("", cfg.Sessions.Issue)
		sessions.Get("/:subject_id/token", cfg.Sessions.Stored)
	}
}
