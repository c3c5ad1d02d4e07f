package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/http/handlers"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Queue          *handlers.QueueHandler
	Admin          *handlers.AdminHandler
	Suggestions    *handlers.SuggestionsHandler
	Interactions   *handlers.InteractionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.Submit)
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/audit", cfg.Tickets.AuditTrail)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/participants", cfg.Tickets.AddParticipant)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)

	guilds := protected.Group("/guilds/:guildID")
	guilds.Get("/tickets", cfg.Tickets.List)
	guilds.Get("/queue", cfg.Queue.Pending)
	guilds.Post("/queue/claim", cfg.Queue.Claim)
	guilds.Get("/stats", cfg.Queue.Stats)

	guilds.Get("/config", cfg.Admin.GetConfig)
	guilds.Put("/config", cfg.Admin.UpdateConfig)

	guilds.Get("/templates", cfg.Admin.ListTemplates)
	guilds.Post("/templates", cfg.Admin.CreateTemplate)
	guilds.Get("/templates/:name", cfg.Admin.GetTemplate)
	guilds.Delete("/templates/:name", cfg.Admin.DeleteTemplate)

	guilds.Get("/panels", cfg.Admin.ListPanels)
	guilds.Put("/panels/:name", cfg.Admin.SavePanel)
	guilds.Post("/panels/:name/post", cfg.Admin.PostPanel)

	guilds.Put("/streams/:streamerID", cfg.Admin.SaveStream)
	guilds.Delete("/streams/:streamerID", cfg.Admin.DeleteStream)

	guilds.Post("/suggestions", cfg.Suggestions.Submit)
	guilds.Post("/suggestions/:marker/approve", cfg.Suggestions.Approve)

	protected.Post("/streams/:streamerID/announce", cfg.Admin.AnnounceStream)

	protected.Post("/interactions", cfg.Interactions.Dispatch)
	protected.Get("/interactions/commands", cfg.Interactions.Commands)
}
