package service

import (
	"context"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// ConfigPatch sets only the fields it carries; nil fields keep their
// stored value.
type ConfigPatch struct {
	TicketCategoryID            *string
	LogChannelID                *string
	StaffRoleID                 *string
	QueueChannelID              *string
	SuggestionChannelID         *string
	ApprovedSuggestionChannelID *string
}

// ConfigService manages the per-guild configuration record.
// Administrators only.
type ConfigService struct {
	configs repository.GuildConfigRepository
}

// NewConfigService constructs the service.
func NewConfigService(configs repository.GuildConfigRepository) *ConfigService {
	return &ConfigService{configs: configs}
}

// Get returns the current configuration, zero-valued if never set.
func (s *ConfigService) Get(ctx context.Context, actor domain.Actor, guildID string) (*domain.GuildConfig, error) {
	if !actor.Administrator {
		return nil, apperrors.NewPermissionDenied("administrator permission required")
	}
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return cfg, nil
}

// Update merges the patch over the stored record and writes it back.
func (s *ConfigService) Update(ctx context.Context, actor domain.Actor, guildID string, patch ConfigPatch) (*domain.GuildConfig, error) {
	if !actor.Administrator {
		return nil, apperrors.NewPermissionDenied("administrator permission required")
	}
	if guildID == "" {
		return nil, apperrors.NewValidationError("guild id required", nil)
	}
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	cfg.GuildID = guildID
	if patch.TicketCategoryID != nil {
		cfg.TicketCategoryID = patch.TicketCategoryID
	}
	if patch.LogChannelID != nil {
		cfg.LogChannelID = patch.LogChannelID
	}
	if patch.StaffRoleID != nil {
		cfg.StaffRoleID = patch.StaffRoleID
	}
	if patch.QueueChannelID != nil {
		cfg.QueueChannelID = patch.QueueChannelID
	}
	if patch.SuggestionChannelID != nil {
		cfg.SuggestionChannelID = patch.SuggestionChannelID
	}
	if patch.ApprovedSuggestionChannelID != nil {
		cfg.ApprovedSuggestionChannelID = patch.ApprovedSuggestionChannelID
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return cfg, nil
}
