package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// TemplateService manages canned staff replies. Creation and deletion are
// administrator operations; any staff member may fetch and list.
type TemplateService struct {
	templates repository.TemplateRepository
	configs   repository.GuildConfigRepository
}

// NewTemplateService constructs the service.
func NewTemplateService(templates repository.TemplateRepository, configs repository.GuildConfigRepository) *TemplateService {
	return &TemplateService{templates: templates, configs: configs}
}

// Create stores a new template under a lowercased name.
func (s *TemplateService) Create(ctx context.Context, actor domain.Actor, guildID, name, content string) (*domain.ResponseTemplate, error) {
	if !actor.Administrator {
		return nil, apperrors.NewPermissionDenied("administrator permission required")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	content = strings.TrimSpace(content)
	if name == "" || content == "" {
		return nil, apperrors.NewValidationError("name and content required", nil)
	}
	template := &domain.ResponseTemplate{GuildID: guildID, Name: name, Content: content}
	err := s.templates.Create(ctx, template)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, apperrors.NewConflict("a template with that name already exists", map[string]any{"name": name})
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return template, nil
}

// Get fetches a template by name for staff use.
func (s *TemplateService) Get(ctx context.Context, actor domain.Actor, guildID, name string) (*domain.ResponseTemplate, error) {
	if err := s.requireStaff(ctx, actor, guildID); err != nil {
		return nil, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	template, err := s.templates.GetByName(ctx, guildID, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("template", map[string]any{"name": name})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return template, nil
}

// ListNames returns all template names for the guild.
func (s *TemplateService) ListNames(ctx context.Context, actor domain.Actor, guildID string) ([]string, error) {
	if err := s.requireStaff(ctx, actor, guildID); err != nil {
		return nil, err
	}
	names, err := s.templates.ListNames(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return names, nil
}

// Delete removes a template by name.
func (s *TemplateService) Delete(ctx context.Context, actor domain.Actor, guildID, name string) error {
	if !actor.Administrator {
		return apperrors.NewPermissionDenied("administrator permission required")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	deleted, err := s.templates.Delete(ctx, guildID, name)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	if !deleted {
		return apperrors.NewNotFound("template", map[string]any{"name": name})
	}
	return nil
}

func (s *TemplateService) requireStaff(ctx context.Context, actor domain.Actor, guildID string) error {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	if !isStaff(actor, cfg) {
		return apperrors.NewPermissionDenied("staff role required")
	}
	return nil
}
