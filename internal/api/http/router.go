package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/ticket-workflow/internal/api/http/handlers"
	"github.com/spec-kit/ticket-workflow/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Intake        *handlers.IntakeHandler
	Tickets       *handlers.TicketsHandler
	Approvals     *handlers.ApprovalsHandler
	Registry      *handlers.RegistryHandler
	Analytics     *handlers.AnalyticsHandler
	Notifications *handlers.NotificationsHandler
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
		cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")

	intake := api.Group("/intake")
	intake.Post("", cfg.Intake.Submit)
	intake.Post("/merge", cfg.Intake.Merge)
	intake.Post("/separate", cfg.Intake.CreateSeparate)

	tickets := api.Group("/tickets")
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/triage", cfg.Tickets.ApplyTriage)
	tickets.Post("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/resolution", cfg.Tickets.RecordResolution)

	approvals := api.Group("/approvals")
	approvals.Post("", cfg.Approvals.Propose)
	approvals.Get("", cfg.Approvals.List)
	approvals.Post("/:id/resolve", cfg.Approvals.Resolve)

	anomalies := api.Group("/anomalies")
	anomalies.Get("", cfg.Registry.ListAnomalies)
	anomalies.Post("", cfg.Registry.RecordAnomaly)

	alerts := api.Group("/alerts")
	alerts.Get("", cfg.Registry.ListAlerts)
	alerts.Post("", cfg.Registry.RaiseAlert)
	alerts.Post("/:id/ack", cfg.Registry.Acknowledge)
	alerts.Delete("/:id", cfg.Registry.Dismiss)

	analytics := api.Group("/analytics")
	analytics.Post("/records", cfg.Analytics.IngestRecord)
	analytics.Get("/summary", cfg.Analytics.Summary)

	api.Get("/notifications", cfg.Notifications.List)
}
