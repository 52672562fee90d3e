package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/change-compliance/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration. Metrics is
// optional.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Chat    *handlers.ChatHandler
	Metrics fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	api := app.Group("/api")
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Get("/stats", cfg.Tickets.Stats)
	api.Post("/chat", cfg.Chat.Chat)
}
