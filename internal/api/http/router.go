package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-ticket-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Receipts  *handlers.ReceiptsHandler
	Dashboard *handlers.DashboardHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")
	api.Get("/dashboard", cfg.Dashboard.Dashboard)
	api.Get("/statistics", cfg.Dashboard.Statistics)
	api.Get("/meta/enums", cfg.Dashboard.Enums)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/next-number", cfg.Tickets.NextNumber)
	tickets.Get("/export.xlsx", cfg.Receipts.Export)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Get("/:id/receipt", cfg.Receipts.Receipt)

	api.Post("/receipts/preview", cfg.Receipts.Preview)
}
