package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/dto"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/service"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// AdminHandler exposes guild configuration, templates, panels and stream
// notification management.
type AdminHandler struct {
	configs   *service.ConfigService
	templates *service.TemplateService
	panels    *service.PanelService
	streams   *service.StreamService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(configs *service.ConfigService, templates *service.TemplateService, panels *service.PanelService, streams *service.StreamService) *AdminHandler {
	return &AdminHandler{configs: configs, templates: templates, panels: panels, streams: streams}
}

// GetConfig GET /guilds/:guildID/config.
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	cfg, err := h.configs.Get(c.UserContext(), actor, c.Params("guildID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configResponse(cfg)})
}

// UpdateConfig PUT /guilds/:guildID/config.
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.GuildConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cfg, err := h.configs.Update(c.UserContext(), actor, c.Params("guildID"), service.ConfigPatch{
		TicketCategoryID:            req.TicketCategoryID,
		LogChannelID:                req.LogChannelID,
		StaffRoleID:                 req.StaffRoleID,
		QueueChannelID:              req.QueueChannelID,
		SuggestionChannelID:         req.SuggestionChannelID,
		ApprovedSuggestionChannelID: req.ApprovedSuggestionChannelID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configResponse(cfg)})
}

// CreateTemplate POST /guilds/:guildID/templates.
func (h *AdminHandler) CreateTemplate(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	template, err := h.templates.Create(c.UserContext(), actor, c.Params("guildID"), req.Name, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TemplateResponse{Name: template.Name, Content: template.Content}})
}

// GetTemplate GET /guilds/:guildID/templates/:name.
func (h *AdminHandler) GetTemplate(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	template, err := h.templates.Get(c.UserContext(), actor, c.Params("guildID"), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TemplateResponse{Name: template.Name, Content: template.Content}})
}

// ListTemplates GET /guilds/:guildID/templates.
func (h *AdminHandler) ListTemplates(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	names, err := h.templates.ListNames(c.UserContext(), actor, c.Params("guildID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": names})
}

// DeleteTemplate DELETE /guilds/:guildID/templates/:name.
func (h *AdminHandler) DeleteTemplate(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.templates.Delete(c.UserContext(), actor, c.Params("guildID"), c.Params("name")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SavePanel PUT /guilds/:guildID/panels/:name.
func (h *AdminHandler) SavePanel(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.PanelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	panel, err := h.panels.Save(c.UserContext(), actor, domain.InfoPanel{
		GuildID: c.Params("guildID"),
		Name:    c.Params("name"),
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"name": panel.Name}})
}

// PostPanel POST /guilds/:guildID/panels/:name/post.
func (h *AdminHandler) PostPanel(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.PostPanelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ChannelID == "" {
		return apperrors.NewValidationError("channel_id required", nil)
	}
	if err := h.panels.Post(c.UserContext(), actor, c.Params("guildID"), c.Params("name"), req.ChannelID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPanels GET /guilds/:guildID/panels.
func (h *AdminHandler) ListPanels(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	names, err := h.panels.ListNames(c.UserContext(), actor, c.Params("guildID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": names})
}

// SaveStream PUT /guilds/:guildID/streams/:streamerID.
func (h *AdminHandler) SaveStream(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.StreamNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	err = h.streams.Configure(c.UserContext(), actor, domain.StreamNotification{
		StreamerID:    c.Params("streamerID"),
		GuildID:       c.Params("guildID"),
		ChannelID:     req.ChannelID,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteStream DELETE /guilds/:guildID/streams/:streamerID.
func (h *AdminHandler) DeleteStream(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.streams.Remove(c.UserContext(), actor, c.Params("streamerID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AnnounceStream POST /streams/:streamerID/announce.
func (h *AdminHandler) AnnounceStream(c *fiber.Ctx) error {
	if _, err := auth.ActorFromContext(c); err != nil {
		return err
	}
	var req dto.StreamAnnounceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.URL == "" {
		return apperrors.NewValidationError("url required", nil)
	}
	if err := h.streams.Announce(c.UserContext(), c.Params("streamerID"), req.StreamerName, req.URL); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func configResponse(cfg *domain.GuildConfig) dto.GuildConfigResponse {
	return dto.GuildConfigResponse{
		GuildID:                     cfg.GuildID,
		TicketCategoryID:            cfg.TicketCategoryID,
		LogChannelID:                cfg.LogChannelID,
		StaffRoleID:                 cfg.StaffRoleID,
		QueueChannelID:              cfg.QueueChannelID,
		SuggestionChannelID:         cfg.SuggestionChannelID,
		ApprovedSuggestionChannelID: cfg.ApprovedSuggestionChannelID,
	}
}
