package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/dto"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/service"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// SuggestionsHandler exposes community suggestion endpoints.
type SuggestionsHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionsHandler constructs handler.
func NewSuggestionsHandler(suggestions *service.SuggestionService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestions}
}

// Submit POST /guilds/:guildID/suggestions.
func (h *SuggestionsHandler) Submit(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	suggestion, err := h.suggestions.Submit(c.UserContext(), actor, c.Params("guildID"), req.Marker, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": suggestionResponse(suggestion)})
}

// Approve POST /guilds/:guildID/suggestions/:marker/approve.
func (h *SuggestionsHandler) Approve(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	suggestion, err := h.suggestions.Approve(c.UserContext(), actor, c.Params("guildID"), c.Params("marker"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": suggestionResponse(suggestion)})
}

func suggestionResponse(suggestion *domain.Suggestion) dto.SuggestionResponse {
	return dto.SuggestionResponse{
		Marker:     suggestion.Marker,
		AuthorName: suggestion.AuthorName,
		Content:    suggestion.Content,
		Approved:   suggestion.Approved,
		ApprovedBy: suggestion.ApprovedBy,
	}
}
