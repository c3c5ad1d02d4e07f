package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel-reiss/guildtickets/internal/api/dto"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/service"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// TicketsHandler exposes submission and lifecycle endpoints.
type TicketsHandler struct {
	admission *service.AdmissionService
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(admission *service.AdmissionService, lifecycle *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{admission: admission, lifecycle: lifecycle}
}

// Submit POST /tickets.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.SubmitInput{
		GuildID:     req.GuildID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Recruitment != nil {
		input.Recruitment = &service.RecruitmentInput{
			Nick:     req.Recruitment.Nick,
			Strength: req.Recruitment.Strength,
			Economy:  req.Recruitment.Economy,
		}
	}
	entry, err := h.admission.Submit(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": queueEntryResponse(entry)})
}

// ListMine GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	guildID := c.Query("guild_id")
	if guildID == "" {
		return apperrors.NewValidationError("guild_id query parameter required", nil)
	}
	tickets, err := h.lifecycle.ListMine(c.UserContext(), actor, guildID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AuditTrail GET /tickets/:id/audit.
func (h *TicketsHandler) AuditTrail(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	trail, err := h.lifecycle.AuditTrail(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEventResponse, 0, len(trail))
	for _, event := range trail {
		items = append(items, dto.AuditEventResponse{
			ID:        event.ID,
			Action:    event.Action,
			ActorID:   event.ActorID,
			ActorName: event.ActorName,
			Detail:    event.Detail,
			CreatedAt: event.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.Close(c.UserContext(), actor, service.CloseInput{TicketID: id, Reason: req.Reason})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	assignee := domain.Actor{ID: req.AssigneeID, DisplayName: req.AssigneeName}
	ticket, err := h.lifecycle.Assign(c.UserContext(), actor, id, assignee)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AddParticipant POST /tickets/:id/participants.
func (h *TicketsHandler) AddParticipant(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.AddParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MemberID == "" {
		return apperrors.NewValidationError("member_id required", nil)
	}
	member := domain.Actor{ID: req.MemberID, DisplayName: req.MemberName}
	if err := h.lifecycle.AddParticipant(c.UserContext(), actor, id, member); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.lifecycle.AddNote(c.UserContext(), actor, id, req.Text); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List GET /guilds/:guildID/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	input := service.ListInput{GuildID: c.Params("guildID")}
	if raw := c.Query("status"); raw != "" {
		status := domain.TicketStatus(raw)
		input.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category := domain.Category(raw)
		if !category.Valid() {
			return apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
		}
		input.Category = &category
	}
	input.Limit = c.QueryInt("limit")
	tickets, err := h.lifecycle.List(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("ticket id must be a number", nil)
	}
	return id, nil
}

func queueEntryResponse(entry *domain.QueueEntry) dto.QueueEntryResponse {
	return dto.QueueEntryResponse{
		ID:            entry.ID,
		GuildID:       entry.GuildID,
		RequesterID:   entry.RequesterID,
		RequesterName: entry.RequesterName,
		Category:      entry.Category,
		Title:         entry.Title,
		CreatedAt:     entry.CreatedAt,
	}
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:            ticket.ID,
		GuildID:       ticket.GuildID,
		RequesterID:   ticket.RequesterID,
		RequesterName: ticket.RequesterName,
		Category:      ticket.Category,
		Title:         ticket.Title,
		Description:   ticket.Description,
		Status:        ticket.Status,
		AssigneeID:    ticket.AssigneeID,
		ChannelID:     ticket.ChannelID,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
		ClosedBy:      ticket.ClosedBy,
		ClosedAt:      ticket.ClosedAt,
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}
