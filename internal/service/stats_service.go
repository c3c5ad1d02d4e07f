package service

import (
	"context"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// StatsReport aggregates ticket and queue counters for one guild.
type StatsReport struct {
	domain.TicketStats
	QueueDepth  int64
	ClosureRate float64
}

// StatsService computes guild-level reporting figures. Staff only.
type StatsService struct {
	tickets repository.TicketRepository
	queue   repository.QueueRepository
	configs repository.GuildConfigRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, queue repository.QueueRepository, configs repository.GuildConfigRepository) *StatsService {
	return &StatsService{tickets: tickets, queue: queue, configs: configs}
}

// Report returns the guild's counters.
func (s *StatsService) Report(ctx context.Context, actor domain.Actor, guildID string) (*StatsReport, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !isStaff(actor, cfg) {
		return nil, apperrors.NewPermissionDenied("staff role required to view statistics")
	}
	stats, err := s.tickets.Stats(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	depth, err := s.queue.PendingCount(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	report := &StatsReport{TicketStats: *stats, QueueDepth: depth}
	if stats.Total > 0 {
		report.ClosureRate = float64(stats.Closed) / float64(stats.Total)
	}
	return report, nil
}
