package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
)

// NotificationService mirrors workflow events into the guild's configured
// channels. Every delivery is best-effort; a missing channel or a send
// failure is logged and dropped.
type NotificationService struct {
	configs  repository.GuildConfigRepository
	notifier platform.Notifier
	logger   *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(configs repository.GuildConfigRepository, notifier platform.Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{configs: configs, notifier: notifier, logger: logger}
}

// Register subscribes the service's handlers on the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketQueued, s.onTicketQueued)
	dispatcher.Subscribe(events.EventTicketClaimed, s.onTicketClaimed)
	dispatcher.Subscribe(events.EventTicketClosed, s.onTicketClosed)
	dispatcher.Subscribe(events.EventSuggestionApproved, s.onSuggestionApproved)
}

func (s *NotificationService) onTicketQueued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketQueuedPayload)
	if !ok {
		return nil
	}
	msg := platform.Message{
		Title: "New request queued",
		Body:  fmt.Sprintf("%s submitted a %s request: %s", payload.RequesterName, payload.Category, payload.Title),
	}
	s.deliver(ctx, event.GuildID, queueChannel, msg)
	return nil
}

func (s *NotificationService) onTicketClaimed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClaimedPayload)
	if !ok {
		return nil
	}
	msg := platform.Message{
		Title: fmt.Sprintf("Ticket #%d opened", payload.TicketID),
		Body:  fmt.Sprintf("%s claimed %s's request: %s", payload.StaffName, payload.RequesterName, payload.Title),
	}
	s.deliver(ctx, event.GuildID, logChannel, msg)
	return nil
}

func (s *NotificationService) onTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	body := fmt.Sprintf("%s closed %q", payload.CloserName, payload.Title)
	if payload.Reason != "" {
		body = fmt.Sprintf("%s. Reason: %s", body, payload.Reason)
	}
	msg := platform.Message{
		Title: fmt.Sprintf("Ticket #%d closed", payload.TicketID),
		Body:  body,
	}
	s.deliver(ctx, event.GuildID, logChannel, msg)
	return nil
}

func (s *NotificationService) onSuggestionApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SuggestionApprovedPayload)
	if !ok {
		return nil
	}
	msg := platform.Message{
		Title: "Suggestion approved",
		Body:  fmt.Sprintf("%s's suggestion was approved by %s:\n%s", payload.AuthorName, payload.ApprovedBy, payload.Content),
	}
	s.deliver(ctx, event.GuildID, approvedSuggestionChannel, msg)
	return nil
}

type channelKind int

const (
	logChannel channelKind = iota
	queueChannel
	approvedSuggestionChannel
)

func (s *NotificationService) deliver(ctx context.Context, guildID string, kind channelKind, msg platform.Message) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		s.logger.Warn("notification config lookup failed",
			zap.String("guild_id", guildID),
			zap.Error(err))
		return
	}
	var channelID *string
	switch kind {
	case logChannel:
		channelID = cfg.LogChannelID
	case queueChannel:
		channelID = cfg.QueueChannelID
	case approvedSuggestionChannel:
		channelID = cfg.ApprovedSuggestionChannelID
	}
	if channelID == nil {
		return
	}
	if err := s.notifier.SendChannel(ctx, *channelID, msg); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("guild_id", guildID),
			zap.String("channel_id", *channelID),
			zap.Error(err))
	}
}
