package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
)

// RecruitmentInput carries the three discrete fields a recruitment
// submission uses instead of a free-text title/description pair.
type RecruitmentInput struct {
	Nick     string
	Strength string
	Economy  string
}

// SubmitInput describes one support request submission.
type SubmitInput struct {
	GuildID     string
	Category    domain.Category
	Title       string
	Description string
	Recruitment *RecruitmentInput
}

// AdmissionService validates submissions and admits them to the waiting
// queue.
type AdmissionService struct {
	queue      repository.QueueRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAdmissionService constructs the service.
func NewAdmissionService(queue repository.QueueRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AdmissionService {
	return &AdmissionService{queue: queue, dispatcher: dispatcher, logger: logger}
}

// Submit admits the request or rejects it with a typed error. The
// duplicate checks and the insert run as one atomic unit per requester at
// the store layer.
func (s *AdmissionService) Submit(ctx context.Context, actor domain.Actor, input SubmitInput) (*domain.QueueEntry, error) {
	if input.GuildID == "" {
		return nil, apperrors.NewValidationError("guild id required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}

	title, description, err := buildContent(input)
	if err != nil {
		return nil, err
	}

	entry := &domain.QueueEntry{
		GuildID:       input.GuildID,
		RequesterID:   actor.ID,
		RequesterName: actor.DisplayName,
		Category:      input.Category,
		Title:         title,
		Description:   description,
	}

	blockingTicket, err := s.queue.Admit(ctx, entry)
	switch {
	case errors.Is(err, repository.ErrDuplicateQueueEntry):
		return nil, apperrors.NewDuplicateQueueEntry(string(input.Category))
	case errors.Is(err, repository.ErrDuplicateOpenTicket):
		return nil, apperrors.NewDuplicateOpenTicket(blockingTicket)
	case err != nil:
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketQueued,
		GuildID:   entry.GuildID,
		Timestamp: time.Now(),
		Payload: events.TicketQueuedPayload{
			QueueEntryID:  entry.ID,
			RequesterID:   entry.RequesterID,
			RequesterName: entry.RequesterName,
			Category:      entry.Category,
			Title:         entry.Title,
		},
	})
	return entry, nil
}

func buildContent(input SubmitInput) (string, string, error) {
	if input.Category == domain.CategoryRecruitment {
		rec := input.Recruitment
		if rec == nil {
			return "", "", apperrors.NewValidationError("recruitment submissions require nick, strength and economy", nil)
		}
		nick := strings.TrimSpace(rec.Nick)
		strength := strings.TrimSpace(rec.Strength)
		economy := strings.TrimSpace(rec.Economy)
		if nick == "" || strength == "" || economy == "" {
			return "", "", apperrors.NewValidationError("recruitment submissions require nick, strength and economy", nil)
		}
		for field, value := range map[string]string{"nick": nick, "strength": strength, "economy": economy} {
			if len(value) > maxTitleLen {
				return "", "", apperrors.NewValidationError(fmt.Sprintf("%s too long", field), map[string]any{"max": maxTitleLen})
			}
		}
		title := fmt.Sprintf("Recruitment: %s", nick)
		description := fmt.Sprintf("Strength: %s\nEconomy: %s", strength, economy)
		return title, description, nil
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return "", "", apperrors.NewValidationError("title and description required", nil)
	}
	if len(title) > maxTitleLen {
		return "", "", apperrors.NewValidationError("title too long", map[string]any{"max": maxTitleLen})
	}
	if len(description) > maxDescriptionLen {
		return "", "", apperrors.NewValidationError("description too long", map[string]any{"max": maxDescriptionLen})
	}
	return title, description, nil
}

func (s *AdmissionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
