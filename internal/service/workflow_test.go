package service

import (
	"context"
	"testing"

	"github.com/gabriel-reiss/guildtickets/internal/config"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// Exercises the full path: a member submits a request, staff claims it,
// the requester closes the resulting ticket.
func TestRequestLifecycleEndToEnd(t *testing.T) {
	queue := newMemoryQueueRepo()
	tickets := newMemoryTicketRepo()
	queue.tickets = tickets
	audit := newMemoryAuditRepo()
	configs := newMemoryConfigRepo()
	configs.setStaffRole("g1", "staff-role")
	provisioner := &fakeProvisioner{}
	notifier := &fakeNotifier{}
	teardown := &fakeTeardown{}
	dispatcher := events.NewInMemoryDispatcher()

	auditSvc := NewAuditService(audit, testLogger())
	admission := NewAdmissionService(queue, dispatcher, testLogger())
	dispatch := NewDispatchService(queue, tickets, configs, auditSvc, provisioner, notifier, dispatcher, testLogger())
	workflow := config.WorkflowConfig{TeardownGraceSeconds: 10, ListLimit: 20}
	lifecycle := NewLifecycleService(tickets, configs, auditSvc, notifier, teardown, provisioner, dispatcher, workflow, testLogger())

	ctx := context.Background()
	member := domain.Actor{ID: "u1", DisplayName: "Riva"}

	entry, err := admission.Submit(ctx, member, SubmitInput{
		GuildID:     "g1",
		Category:    domain.CategoryTechnical,
		Title:       "client crashes on startup",
		Description: "crash log attached in chat",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	claim, ok, err := dispatch.ClaimNext(ctx, "g1", staff)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	if claim.Ticket.RequesterID != member.ID {
		t.Fatalf("requester = %s", claim.Ticket.RequesterID)
	}
	if claim.Ticket.Title != entry.Title {
		t.Fatalf("title = %q", claim.Ticket.Title)
	}
	if count, _ := queue.PendingCount(ctx, "g1"); count != 0 {
		t.Fatalf("queue depth after claim = %d", count)
	}

	// A second request from the member is now blocked by the open ticket.
	_, err = admission.Submit(ctx, member, SubmitInput{
		GuildID: "g1", Category: domain.CategoryGeneral, Title: "another", Description: "one more",
	})
	if apperrors.CodeOf(err) != apperrors.CodeDuplicateOpenTicket {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeDuplicateOpenTicket)
	}

	closed, err := lifecycle.Close(ctx, member, CloseInput{TicketID: claim.Ticket.ID})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed {
		t.Fatalf("status = %s", closed.Status)
	}
	if len(teardown.scheduled) != 1 || teardown.scheduled[0].channelID != claim.Channel.ID {
		t.Fatalf("teardown = %+v", teardown.scheduled)
	}

	trail, err := lifecycle.AuditTrail(ctx, member, claim.Ticket.ID)
	if err != nil {
		t.Fatalf("trail: %v", err)
	}
	if len(trail) != 2 || trail[0].Action != domain.AuditCreated || trail[1].Action != domain.AuditClosed {
		t.Fatalf("trail = %+v", trail)
	}
}
