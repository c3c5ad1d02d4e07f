package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// Claim is the result of taking the oldest waiting request.
type Claim struct {
	Ticket  *domain.Ticket
	Channel platform.ProvisionedChannel
}

// DispatchService moves queue entries into open tickets with a dedicated
// channel.
type DispatchService struct {
	queue       repository.QueueRepository
	tickets     repository.TicketRepository
	configs     repository.GuildConfigRepository
	audit       *AuditService
	provisioner platform.Provisioner
	notifier    platform.Notifier
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// NewDispatchService constructs the service.
func NewDispatchService(
	queue repository.QueueRepository,
	tickets repository.TicketRepository,
	configs repository.GuildConfigRepository,
	audit *AuditService,
	provisioner platform.Provisioner,
	notifier platform.Notifier,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		queue:       queue,
		tickets:     tickets,
		configs:     configs,
		audit:       audit,
		provisioner: provisioner,
		notifier:    notifier,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// ClaimNext pops the oldest waiting entry for the guild and turns it into
// an open ticket assigned to the claiming staff member. ok is false when
// the queue is empty. Two concurrent calls never receive the same entry;
// the pop is a single atomic store operation.
func (s *DispatchService) ClaimNext(ctx context.Context, guildID string, actor domain.Actor) (*Claim, bool, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, false, apperrors.NewStoreUnavailable(err)
	}
	if !isStaff(actor, cfg) {
		return nil, false, apperrors.NewPermissionDenied("staff role required to claim requests")
	}

	entry, ok, err := s.queue.ClaimOldest(ctx, guildID)
	if err != nil {
		return nil, false, apperrors.NewStoreUnavailable(err)
	}
	if !ok {
		return nil, false, nil
	}

	channel, err := s.provisionChannel(ctx, cfg, entry, actor)
	if err != nil {
		s.restore(ctx, entry)
		return nil, false, apperrors.NewProvisionFailure(err)
	}

	now := time.Now()
	channelID := channel.ID
	assigneeID := actor.ID
	ticket := &domain.Ticket{
		GuildID:       entry.GuildID,
		RequesterID:   entry.RequesterID,
		RequesterName: entry.RequesterName,
		Category:      entry.Category,
		Title:         entry.Title,
		Description:   entry.Description,
		Status:        domain.TicketStatusOpen,
		AssigneeID:    &assigneeID,
		ChannelID:     &channelID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if delErr := s.provisioner.DeleteChannel(ctx, channel.ID, "ticket creation failed"); delErr != nil {
			s.logger.Warn("orphaned channel after failed ticket insert",
				zap.String("channel_id", channel.ID),
				zap.Error(delErr))
		}
		s.restore(ctx, entry)
		return nil, false, apperrors.NewStoreUnavailable(err)
	}

	s.audit.Record(ctx, ticket.ID, domain.AuditCreated, actor, fmt.Sprintf("category: %s", entry.Category))

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketClaimed,
		GuildID:   guildID,
		Timestamp: now,
		Payload: events.TicketClaimedPayload{
			TicketID:      ticket.ID,
			RequesterID:   ticket.RequesterID,
			RequesterName: ticket.RequesterName,
			StaffID:       actor.ID,
			StaffName:     actor.DisplayName,
			Category:      ticket.Category,
			Title:         ticket.Title,
			ChannelID:     channel.ID,
		},
	})

	greeting := platform.Message{
		Title: ticket.Title,
		Body: fmt.Sprintf("Hello %s, %s will handle your %s request here.",
			ticket.RequesterName, actor.DisplayName, ticket.Category.Label()),
	}
	if err := s.notifier.SendChannel(ctx, channel.ID, greeting); err != nil {
		s.logger.Warn("ticket greeting failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
	}

	return &Claim{Ticket: ticket, Channel: channel}, true, nil
}

// Pending reports how many entries are waiting for the guild.
func (s *DispatchService) Pending(ctx context.Context, guildID string, actor domain.Actor) (int64, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return 0, apperrors.NewStoreUnavailable(err)
	}
	if !isStaff(actor, cfg) {
		return 0, apperrors.NewPermissionDenied("staff role required")
	}
	count, err := s.queue.PendingCount(ctx, guildID)
	if err != nil {
		return 0, apperrors.NewStoreUnavailable(err)
	}
	return count, nil
}

func (s *DispatchService) provisionChannel(ctx context.Context, cfg *domain.GuildConfig, entry *domain.QueueEntry, actor domain.Actor) (platform.ProvisionedChannel, error) {
	spec := platform.ChannelSpec{
		GuildID:     entry.GuildID,
		Name:        channelName(entry),
		RequesterID: entry.RequesterID,
		StaffID:     actor.ID,
	}
	if cfg != nil && cfg.TicketCategoryID != nil {
		spec.ParentID = *cfg.TicketCategoryID
	}
	return s.provisioner.CreateTicketChannel(ctx, spec)
}

// restore puts a popped entry back with its original enqueue time so it
// keeps its place at the head of the queue.
func (s *DispatchService) restore(ctx context.Context, entry *domain.QueueEntry) {
	if err := s.queue.Restore(ctx, entry); err != nil {
		s.logger.Error("queue entry lost after failed claim",
			zap.Int64("entry_id", entry.ID),
			zap.String("requester_id", entry.RequesterID),
			zap.Error(err))
	}
}

func (s *DispatchService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func channelName(entry *domain.QueueEntry) string {
	name := strings.ToLower(strings.ReplaceAll(entry.RequesterName, " ", "-"))
	return fmt.Sprintf("%s-%s", entry.Category.ChannelSlug(), name)
}
