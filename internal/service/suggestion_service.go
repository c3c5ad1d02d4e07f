package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// SuggestionService records community suggestions and their approvals.
// Suggestions are keyed externally by the marker the gateway stamps on the
// posted message, so approval never needs a numeric id.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	configs     repository.GuildConfigRepository
	dispatcher  events.Dispatcher
}

// NewSuggestionService constructs the service.
func NewSuggestionService(suggestions repository.SuggestionRepository, configs repository.GuildConfigRepository, dispatcher events.Dispatcher) *SuggestionService {
	return &SuggestionService{suggestions: suggestions, configs: configs, dispatcher: dispatcher}
}

// Submit stores a new suggestion under the given marker.
func (s *SuggestionService) Submit(ctx context.Context, actor domain.Actor, guildID, marker, content string) (*domain.Suggestion, error) {
	marker = strings.TrimSpace(marker)
	content = strings.TrimSpace(content)
	if guildID == "" || marker == "" || content == "" {
		return nil, apperrors.NewValidationError("guild id, marker and content required", nil)
	}
	suggestion := &domain.Suggestion{
		GuildID:    guildID,
		Marker:     marker,
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName,
		Content:    content,
	}
	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return suggestion, nil
}

// Approve marks the suggestion behind the marker as approved. Staff only.
// Approval is one-shot; a second call reports a conflict.
func (s *SuggestionService) Approve(ctx context.Context, actor domain.Actor, guildID, marker string) (*domain.Suggestion, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !isStaff(actor, cfg) {
		return nil, apperrors.NewPermissionDenied("staff role required to approve suggestions")
	}

	now := time.Now()
	approved, err := s.suggestions.MarkApproved(ctx, guildID, marker, actor.ID, now)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !approved {
		if _, err := s.suggestions.GetByMarker(ctx, guildID, marker); err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.NewNotFound("suggestion", map[string]any{"marker": marker})
			}
			return nil, apperrors.NewStoreUnavailable(err)
		}
		return nil, apperrors.NewConflict("suggestion already approved", map[string]any{"marker": marker})
	}

	suggestion, err := s.suggestions.GetByMarker(ctx, guildID, marker)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSuggestionApproved,
			GuildID:   guildID,
			Timestamp: now,
			Payload: events.SuggestionApprovedPayload{
				Marker:     marker,
				AuthorName: suggestion.AuthorName,
				Content:    suggestion.Content,
				ApprovedBy: actor.DisplayName,
			},
		})
	}
	return suggestion, nil
}
