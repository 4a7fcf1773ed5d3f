package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gradecraft/gradecraft-api/internal/config"
	"github.com/gradecraft/gradecraft-api/internal/handler"
	"github.com/gradecraft/gradecraft-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(api)
	}
}
