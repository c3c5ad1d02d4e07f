package service

import (
	"context"
	"testing"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

func newSuggestionEnv() (*SuggestionService, *memorySuggestionRepo, events.Dispatcher) {
	suggestions := newMemorySuggestionRepo()
	configs := newMemoryConfigRepo()
	configs.setStaffRole("g1", "staff-role")
	dispatcher := events.NewInMemoryDispatcher()
	return NewSuggestionService(suggestions, configs, dispatcher), suggestions, dispatcher
}

func TestSuggestionApproveByMarker(t *testing.T) {
	svc, _, dispatcher := newSuggestionEnv()
	ctx := context.Background()
	author := domain.Actor{ID: "u1", DisplayName: "Riva"}

	var approvedEvents []events.Event
	dispatcher.Subscribe(events.EventSuggestionApproved, func(_ context.Context, e events.Event) error {
		approvedEvents = append(approvedEvents, e)
		return nil
	})

	if _, err := svc.Submit(ctx, author, "g1", "msg-1001", "add a music channel"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	suggestion, err := svc.Approve(ctx, staff, "g1", "msg-1001")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !suggestion.Approved {
		t.Fatalf("suggestion not marked approved")
	}
	if suggestion.ApprovedBy == nil || *suggestion.ApprovedBy != staff.ID {
		t.Fatalf("approved by = %v", suggestion.ApprovedBy)
	}
	if len(approvedEvents) != 1 {
		t.Fatalf("approved events = %d, want 1", len(approvedEvents))
	}
}

func TestSuggestionApproveTwiceConflicts(t *testing.T) {
	svc, _, _ := newSuggestionEnv()
	ctx := context.Background()
	author := domain.Actor{ID: "u1", DisplayName: "Riva"}

	if _, err := svc.Submit(ctx, author, "g1", "msg-1", "idea"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Approve(ctx, staff, "g1", "msg-1"); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := svc.Approve(ctx, staff, "g1", "msg-1")
	if apperrors.CodeOf(err) != apperrors.CodeConflict {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeConflict)
	}
}

func TestSuggestionApproveUnknownMarker(t *testing.T) {
	svc, _, _ := newSuggestionEnv()

	_, err := svc.Approve(context.Background(), staff, "g1", "msg-missing")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeNotFound)
	}
}

func TestSuggestionApproveRequiresStaff(t *testing.T) {
	svc, _, _ := newSuggestionEnv()
	ctx := context.Background()
	author := domain.Actor{ID: "u1", DisplayName: "Riva"}

	if _, err := svc.Submit(ctx, author, "g1", "msg-2", "idea"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err := svc.Approve(ctx, author, "g1", "msg-2")
	if apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodePermissionDenied)
	}
}
