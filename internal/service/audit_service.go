package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
)

// AuditService appends and reads the per-ticket action trail. Appends are
// best-effort: a store failure is logged and swallowed so it can never
// abort the business operation that triggered it.
type AuditService struct {
	events repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(events repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{events: events, logger: logger}
}

// Record appends one event for the ticket.
func (s *AuditService) Record(ctx context.Context, ticketID int64, action domain.AuditAction, actor domain.Actor, detail string) {
	event := &domain.AuditEvent{
		TicketID:  ticketID,
		Action:    action,
		ActorID:   actor.ID,
		ActorName: actor.DisplayName,
	}
	if detail != "" {
		event.Detail = &detail
	}
	if err := s.events.Append(ctx, event); err != nil {
		s.logger.Warn("audit append failed",
			zap.Int64("ticket_id", ticketID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// Trail returns the ticket's events in append order.
func (s *AuditService) Trail(ctx context.Context, ticketID int64) ([]domain.AuditEvent, error) {
	return s.events.ListByTicket(ctx, ticketID)
}
