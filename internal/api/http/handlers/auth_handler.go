package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/dto"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// AuthHandler exchanges the gateway's API key for actor tokens.
type AuthHandler struct {
	gateway *auth.GatewayAuth
}

// NewAuthHandler constructs handler.
func NewAuthHandler(gateway *auth.GatewayAuth) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.ActorTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.APIKey == "" || req.ActorID == "" {
		return apperrors.NewValidationError("api_key and actor_id required", nil)
	}
	actor := domain.Actor{
		ID:            req.ActorID,
		DisplayName:   req.DisplayName,
		Administrator: req.Administrator,
		RoleIDs:       req.RoleIDs,
	}
	token, expiresAt, err := h.gateway.IssueActorToken(req.APIKey, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ActorTokenResponse{Token: token, ExpiresAt: expiresAt}})
}
