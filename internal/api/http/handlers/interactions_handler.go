package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/dto"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/command"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// InteractionsHandler routes named gateway interactions through the
// command registry.
type InteractionsHandler struct {
	registry *command.Registry
}

// NewInteractionsHandler constructs handler.
func NewInteractionsHandler(registry *command.Registry) *InteractionsHandler {
	return &InteractionsHandler{registry: registry}
}

// Dispatch POST /interactions.
func (h *InteractionsHandler) Dispatch(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Command == "" {
		return apperrors.NewValidationError("command required", nil)
	}
	resp, err := h.registry.Dispatch(c.UserContext(), req.Command, command.Request{
		GuildID:   req.GuildID,
		ChannelID: req.ChannelID,
		Actor:     actor,
		Args:      req.Args,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CommandResponse{Content: resp.Content, Private: resp.Private}})
}

// Commands GET /interactions/commands.
func (h *InteractionsHandler) Commands(c *fiber.Ctx) error {
	if _, err := auth.ActorFromContext(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.registry.Names()})
}
