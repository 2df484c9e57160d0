package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sge-estagio-api/internal/config"
	"github.com/noah-isme/sge-estagio-api/internal/handler"
	"github.com/noah-isme/sge-estagio-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EstagioHandler     *handler.EstagioHandler
	ConfirmacaoHandler *handler.ConfirmacaoHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// The confirmation endpoint is public: the token is the credential.
	if deps.ConfirmacaoHandler != nil {
		public := api.Group("/public")
		deps.ConfirmacaoHandler.Register(public)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EstagioHandler != nil {
		protected := api.Group("", jwtMiddleware)
		deps.EstagioHandler.Register(protected)
	}
}
