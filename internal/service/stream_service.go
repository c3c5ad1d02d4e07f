package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

const defaultStreamMessage = "{streamer} is live! Watch at {url}"

// StreamService manages go-live announcement settings and renders the
// announcement when a configured streamer goes live.
type StreamService struct {
	streams  repository.StreamRepository
	notifier platform.Notifier
}

// NewStreamService constructs the service.
func NewStreamService(streams repository.StreamRepository, notifier platform.Notifier) *StreamService {
	return &StreamService{streams: streams, notifier: notifier}
}

// Configure creates or replaces the announcement settings for a streamer.
func (s *StreamService) Configure(ctx context.Context, actor domain.Actor, notification domain.StreamNotification) error {
	if !actor.Administrator {
		return apperrors.NewPermissionDenied("administrator permission required")
	}
	if notification.StreamerID == "" || notification.GuildID == "" || notification.ChannelID == "" {
		return apperrors.NewValidationError("streamer id, guild id and channel id required", nil)
	}
	if err := s.streams.Upsert(ctx, &notification); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// Remove deletes a streamer's announcement settings.
func (s *StreamService) Remove(ctx context.Context, actor domain.Actor, streamerID string) error {
	if !actor.Administrator {
		return apperrors.NewPermissionDenied("administrator permission required")
	}
	deleted, err := s.streams.Delete(ctx, streamerID)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	if !deleted {
		return apperrors.NewNotFound("stream notification", map[string]any{"streamer_id": streamerID})
	}
	return nil
}

// Announce posts the go-live message for the streamer, if configured.
func (s *StreamService) Announce(ctx context.Context, streamerID, streamerName, url string) error {
	notification, err := s.streams.GetByStreamer(ctx, streamerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("stream notification", map[string]any{"streamer_id": streamerID})
		}
		return apperrors.NewStoreUnavailable(err)
	}
	body := renderAnnouncement(notification, streamerName, url)
	msg := platform.Message{Body: body}
	if err := s.notifier.SendChannel(ctx, notification.ChannelID, msg); err != nil {
		return apperrors.NewProvisionFailure(err)
	}
	return nil
}

func renderAnnouncement(notification *domain.StreamNotification, streamerName, url string) string {
	template := defaultStreamMessage
	if notification.CustomMessage != nil && strings.TrimSpace(*notification.CustomMessage) != "" {
		template = *notification.CustomMessage
	}
	body := strings.ReplaceAll(template, "{streamer}", streamerName)
	body = strings.ReplaceAll(body, "{url}", url)
	if !strings.Contains(template, "{url}") {
		body = fmt.Sprintf("%s\n%s", body, url)
	}
	return body
}
