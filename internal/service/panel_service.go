package service

import (
	"context"
	"strings"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// PanelService manages named informational panels an administrator
// configures once and posts on demand.
type PanelService struct {
	panels   repository.PanelRepository
	notifier platform.Notifier
}

// NewPanelService constructs the service.
func NewPanelService(panels repository.PanelRepository, notifier platform.Notifier) *PanelService {
	return &PanelService{panels: panels, notifier: notifier}
}

// Save creates or replaces the panel under a lowercased name.
func (s *PanelService) Save(ctx context.Context, actor domain.Actor, panel domain.InfoPanel) (*domain.InfoPanel, error) {
	if !actor.Administrator {
		return nil, apperrors.NewPermissionDenied("administrator permission required")
	}
	panel.Name = strings.ToLower(strings.TrimSpace(panel.Name))
	panel.Title = strings.TrimSpace(panel.Title)
	panel.Content = strings.TrimSpace(panel.Content)
	if panel.GuildID == "" || panel.Name == "" || panel.Content == "" {
		return nil, apperrors.NewValidationError("guild id, name and content required", nil)
	}
	if err := s.panels.Upsert(ctx, &panel); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return &panel, nil
}

// Post sends the named panel to the target channel.
func (s *PanelService) Post(ctx context.Context, actor domain.Actor, guildID, name, channelID string) error {
	if !actor.Administrator {
		return apperrors.NewPermissionDenied("administrator permission required")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	panel, err := s.panels.GetByName(ctx, guildID, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("panel", map[string]any{"name": name})
		}
		return apperrors.NewStoreUnavailable(err)
	}
	msg := platform.Message{Title: panel.Title, Body: panel.Content}
	if err := s.notifier.SendChannel(ctx, channelID, msg); err != nil {
		return apperrors.NewProvisionFailure(err)
	}
	return nil
}

// ListNames returns all panel names for the guild.
func (s *PanelService) ListNames(ctx context.Context, actor domain.Actor, guildID string) ([]string, error) {
	if !actor.Administrator {
		return nil, apperrors.NewPermissionDenied("administrator permission required")
	}
	names, err := s.panels.ListNames(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return names, nil
}
