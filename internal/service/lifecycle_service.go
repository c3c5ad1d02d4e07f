package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/config"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// TeardownScheduler defers channel deletion past a grace window.
type TeardownScheduler interface {
	Schedule(ctx context.Context, channelID, reason string, due time.Time) error
	Cancel(ctx context.Context, channelID string) error
}

// CloseInput carries a close request.
type CloseInput struct {
	TicketID int64
	Reason   string
}

// ListInput carries staff listing parameters.
type ListInput struct {
	GuildID  string
	Status   *domain.TicketStatus
	Category *domain.Category
	Limit    int
}

// LifecycleService owns the open ticket's state transitions and reads.
type LifecycleService struct {
	tickets     repository.TicketRepository
	configs     repository.GuildConfigRepository
	audit       *AuditService
	notifier    platform.Notifier
	teardown    TeardownScheduler
	provisioner platform.Provisioner
	dispatcher  events.Dispatcher
	workflow    config.WorkflowConfig
	logger      *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(
	tickets repository.TicketRepository,
	configs repository.GuildConfigRepository,
	audit *AuditService,
	notifier platform.Notifier,
	teardown TeardownScheduler,
	provisioner platform.Provisioner,
	dispatcher events.Dispatcher,
	workflow config.WorkflowConfig,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		tickets:     tickets,
		configs:     configs,
		audit:       audit,
		notifier:    notifier,
		teardown:    teardown,
		provisioner: provisioner,
		dispatcher:  dispatcher,
		workflow:    workflow,
		logger:      logger,
	}
}

// Close transitions the ticket to its terminal state. The requester may
// close their own ticket at will; anyone else must hold the staff role and
// must supply a reason, which is recorded and sent to the requester.
// Closed is terminal: a second close reports ALREADY_CLOSED and records
// nothing.
func (s *LifecycleService) Close(ctx context.Context, actor domain.Actor, input CloseInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.guildConfig(ctx, ticket.GuildID)
	if err != nil {
		return nil, err
	}
	if !canViewTicket(actor, ticket, cfg) {
		return nil, apperrors.NewPermissionDenied("only the requester or staff may close a ticket")
	}

	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewAlreadyClosed(ticket.ID)
	}
	staffClose := actor.ID != ticket.RequesterID
	reason := strings.TrimSpace(input.Reason)
	if staffClose && reason == "" {
		return nil, apperrors.NewValidationError("a reason is required when closing another member's ticket", nil)
	}

	now := time.Now()
	closed, err := s.tickets.Close(ctx, ticket.ID, actor.ID, now)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !closed {
		// Lost the race against a concurrent close.
		return nil, apperrors.NewAlreadyClosed(ticket.ID)
	}
	ticket.Status = domain.TicketStatusClosed
	closedBy := actor.ID
	ticket.ClosedBy = &closedBy
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now

	detail := ""
	if reason != "" {
		detail = fmt.Sprintf("reason: %s", reason)
	}
	s.audit.Record(ctx, ticket.ID, domain.AuditClosed, actor, detail)

	if staffClose {
		dm := platform.Message{
			Title: fmt.Sprintf("Your ticket %q was closed", ticket.Title),
			Body:  fmt.Sprintf("Closed by %s. Reason: %s", actor.DisplayName, reason),
		}
		if err := s.notifier.SendDirect(ctx, ticket.RequesterID, dm); err != nil {
			s.logger.Warn("close notice undeliverable",
				zap.Int64("ticket_id", ticket.ID),
				zap.String("requester_id", ticket.RequesterID),
				zap.Error(err))
		}
	}

	if ticket.ChannelID != nil {
		s.scheduleTeardown(ctx, ticket, reason, now)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketClosed,
		GuildID:   ticket.GuildID,
		Timestamp: now,
		Payload: events.TicketClosedPayload{
			TicketID:   ticket.ID,
			Title:      ticket.Title,
			ClosedBy:   actor.ID,
			CloserName: actor.DisplayName,
			Reason:     reason,
		},
	})
	return ticket, nil
}

// CloseByChannel resolves the open ticket bound to the channel and closes
// it. Used by in-channel commands where the caller knows no ticket id.
func (s *LifecycleService) CloseByChannel(ctx context.Context, actor domain.Actor, channelID, reason string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetOpenByChannel(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"channel_id": channelID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return s.Close(ctx, actor, CloseInput{TicketID: ticket.ID, Reason: reason})
}

// Assign re-points the ticket at another staff member. Administrators
// only.
func (s *LifecycleService) Assign(ctx context.Context, actor domain.Actor, ticketID int64, assignee domain.Actor) (*domain.Ticket, error) {
	if !actor.Administrator {
		return nil, apperrors.NewPermissionDenied("only administrators may reassign tickets")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	updated, err := s.tickets.SetAssignee(ctx, ticketID, assignee.ID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !updated {
		return nil, apperrors.NewAlreadyClosed(ticketID)
	}
	assigneeID := assignee.ID
	ticket.AssigneeID = &assigneeID

	s.audit.Record(ctx, ticketID, domain.AuditAssigned, actor, fmt.Sprintf("assignee: %s", assignee.DisplayName))

	if ticket.ChannelID != nil {
		note := platform.Message{Body: fmt.Sprintf("%s is now handling this ticket.", assignee.DisplayName)}
		if err := s.notifier.SendChannel(ctx, *ticket.ChannelID, note); err != nil {
			s.logger.Warn("assignment notice undeliverable",
				zap.Int64("ticket_id", ticketID),
				zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		GuildID:   ticket.GuildID,
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			TicketID:     ticketID,
			AssigneeID:   assignee.ID,
			AssigneeName: assignee.DisplayName,
			AssignedBy:   actor.ID,
		},
	})
	return ticket, nil
}

// AddParticipant grants another member access to the ticket channel.
// Staff only.
func (s *LifecycleService) AddParticipant(ctx context.Context, actor domain.Actor, ticketID int64, member domain.Actor) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	cfg, err := s.guildConfig(ctx, ticket.GuildID)
	if err != nil {
		return err
	}
	if !isStaff(actor, cfg) {
		return apperrors.NewPermissionDenied("staff role required to add participants")
	}
	if ticket.ChannelID == nil {
		return apperrors.NewConflict("ticket has no channel", nil)
	}
	if err := s.provisioner.GrantAccess(ctx, *ticket.ChannelID, member.ID); err != nil {
		return apperrors.NewProvisionFailure(err)
	}
	s.audit.Record(ctx, ticketID, domain.AuditUserAdded, actor, fmt.Sprintf("member: %s", member.DisplayName))
	return nil
}

// AddNote appends a free-form note to the ticket's trail. Anyone who can
// view the ticket may leave one.
func (s *LifecycleService) AddNote(ctx context.Context, actor domain.Actor, ticketID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.NewValidationError("note text required", nil)
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	cfg, err := s.guildConfig(ctx, ticket.GuildID)
	if err != nil {
		return err
	}
	if !canViewTicket(actor, ticket, cfg) {
		return apperrors.NewPermissionDenied("not your ticket")
	}
	s.audit.Record(ctx, ticketID, domain.AuditMessage, actor, text)
	return nil
}

// Get returns the ticket when the actor is its requester or staff.
func (s *LifecycleService) Get(ctx context.Context, actor domain.Actor, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.guildConfig(ctx, ticket.GuildID)
	if err != nil {
		return nil, err
	}
	if !canViewTicket(actor, ticket, cfg) {
		return nil, apperrors.NewPermissionDenied("not your ticket")
	}
	return ticket, nil
}

// AuditTrail returns the ticket's events, subject to the view predicate.
func (s *LifecycleService) AuditTrail(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.AuditEvent, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	trail, err := s.audit.Trail(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return trail, nil
}

// List returns the newest tickets for the guild. Staff only.
func (s *LifecycleService) List(ctx context.Context, actor domain.Actor, input ListInput) ([]domain.Ticket, error) {
	cfg, err := s.guildConfig(ctx, input.GuildID)
	if err != nil {
		return nil, err
	}
	if !isStaff(actor, cfg) {
		return nil, apperrors.NewPermissionDenied("staff role required to list tickets")
	}
	limit := input.Limit
	if limit <= 0 || limit > s.workflow.ListLimit {
		limit = s.workflow.ListLimit
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		GuildID:  input.GuildID,
		Status:   input.Status,
		Category: input.Category,
		Limit:    limit,
	})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

// ListMine returns the actor's own tickets for the guild.
func (s *LifecycleService) ListMine(ctx context.Context, actor domain.Actor, guildID string) ([]domain.Ticket, error) {
	requester := actor.ID
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		GuildID:     guildID,
		RequesterID: &requester,
		Limit:       s.workflow.ListLimit,
	})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

func (s *LifecycleService) scheduleTeardown(ctx context.Context, ticket *domain.Ticket, reason string, closedAt time.Time) {
	notice := platform.Message{
		Body: fmt.Sprintf("This ticket is closed. The channel will be removed in %s.", s.workflow.TeardownGrace()),
	}
	if err := s.notifier.SendChannel(ctx, *ticket.ChannelID, notice); err != nil {
		s.logger.Warn("teardown notice undeliverable",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
	}
	teardownReason := fmt.Sprintf("ticket %d closed", ticket.ID)
	if reason != "" {
		teardownReason = fmt.Sprintf("ticket %d closed: %s", ticket.ID, reason)
	}
	if err := s.teardown.Schedule(ctx, *ticket.ChannelID, teardownReason, closedAt.Add(s.workflow.TeardownGrace())); err != nil {
		s.logger.Error("teardown scheduling failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("channel_id", *ticket.ChannelID),
			zap.Error(err))
	}
}

func (s *LifecycleService) getTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return ticket, nil
}

func (s *LifecycleService) guildConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return cfg, nil
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
