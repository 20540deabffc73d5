package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/academy-api/internal/config"
	"github.com/noah-isme/academy-api/internal/handler"
	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	WithdrawalHandler     *handler.WithdrawalHandler
	AcademyCodeHandler    *handler.AcademyCodeHandler
	RetentionAuditHandler *handler.RetentionAuditHandler
	JWTMiddleware         fiber.Handler
	HealthProbes          map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.WithdrawalHandler != nil {
		account := app.Group("/api/v2/account", jwtMiddleware,
			middleware.RateLimit("withdrawal", cfg.RateLimitMax, cfg.RateLimitWindow))
		deps.WithdrawalHandler.Register(account)
	}

	if deps.AcademyCodeHandler != nil {
		academies := app.Group("/api/v2/academies", jwtMiddleware, middleware.RequireRole("PRINCIPAL"))
		deps.AcademyCodeHandler.Register(academies)
	}

	if deps.RetentionAuditHandler != nil {
		admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("ADMIN"))
		deps.RetentionAuditHandler.Register(admin)
	}
}
