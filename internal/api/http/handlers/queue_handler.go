package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/dto"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/service"
)

// QueueHandler exposes staff queue operations.
type QueueHandler struct {
	dispatch *service.DispatchService
	stats    *service.StatsService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(dispatch *service.DispatchService, stats *service.StatsService) *QueueHandler {
	return &QueueHandler{dispatch: dispatch, stats: stats}
}

// Claim POST /guilds/:guildID/queue/claim.
func (h *QueueHandler) Claim(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	claim, ok, err := h.dispatch.ClaimNext(c.UserContext(), c.Params("guildID"), actor)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(fiber.Map{"data": nil, "queue_empty": true})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ClaimResponse{
		Ticket:    ticketResponse(claim.Ticket),
		ChannelID: claim.Channel.ID,
		Channel:   claim.Channel.Name,
	}})
}

// Pending GET /guilds/:guildID/queue.
func (h *QueueHandler) Pending(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	count, err := h.dispatch.Pending(c.UserContext(), c.Params("guildID"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"pending": count}})
}

// Stats GET /guilds/:guildID/stats.
func (h *QueueHandler) Stats(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	report, err := h.stats.Report(c.UserContext(), actor, c.Params("guildID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:            report.Total,
		Open:             report.Open,
		Closed:           report.Closed,
		UniqueRequesters: report.UniqueRequesters,
		CreatedToday:     report.CreatedToday,
		ByCategory:       report.ByCategory,
		QueueDepth:       report.QueueDepth,
		ClosureRate:      report.ClosureRate,
	}})
}
