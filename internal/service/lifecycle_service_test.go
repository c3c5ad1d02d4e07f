package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gabriel-reiss/guildtickets/internal/config"
	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

type lifecycleEnv struct {
	tickets     *memoryTicketRepo
	audit       *memoryAuditRepo
	configs     *memoryConfigRepo
	notifier    *fakeNotifier
	teardown    *fakeTeardown
	provisioner *fakeProvisioner
	svc         *LifecycleService
}

func newLifecycleEnv() *lifecycleEnv {
	env := &lifecycleEnv{
		tickets:     newMemoryTicketRepo(),
		audit:       newMemoryAuditRepo(),
		configs:     newMemoryConfigRepo(),
		notifier:    &fakeNotifier{},
		teardown:    &fakeTeardown{},
		provisioner: &fakeProvisioner{},
	}
	env.configs.setStaffRole("g1", "staff-role")
	auditSvc := NewAuditService(env.audit, testLogger())
	workflow := config.WorkflowConfig{TeardownGraceSeconds: 10, ListLimit: 20}
	env.svc = NewLifecycleService(env.tickets, env.configs, auditSvc, env.notifier,
		env.teardown, env.provisioner, events.NewInMemoryDispatcher(), workflow, testLogger())
	return env
}

func (env *lifecycleEnv) openTicket(t *testing.T, requesterID string) *domain.Ticket {
	t.Helper()
	channelID := "chan-" + requesterID
	assignee := staff.ID
	ticket := &domain.Ticket{
		GuildID:       "g1",
		RequesterID:   requesterID,
		RequesterName: "user-" + requesterID,
		Category:      domain.CategoryGeneral,
		Title:         "help needed",
		Description:   "details",
		Status:        domain.TicketStatusOpen,
		AssigneeID:    &assignee,
		ChannelID:     &channelID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := env.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestCloseByRequester(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	owner := domain.Actor{ID: "u1", DisplayName: "Riva"}

	closed, err := env.svc.Close(context.Background(), owner, CloseInput{TicketID: ticket.ID})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed {
		t.Fatalf("status = %s", closed.Status)
	}
	if len(env.notifier.direct) != 0 {
		t.Fatalf("requester close must not send a DM")
	}
	if len(env.teardown.scheduled) != 1 {
		t.Fatalf("teardown scheduled %d times, want 1", len(env.teardown.scheduled))
	}
	due := env.teardown.scheduled[0].due
	if wait := time.Until(due); wait < 9*time.Second || wait > 11*time.Second {
		t.Fatalf("teardown due in %s, want ~10s", wait)
	}
}

func TestCloseByStaffRequiresReason(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")

	_, err := env.svc.Close(context.Background(), staff, CloseInput{TicketID: ticket.ID})
	if apperrors.CodeOf(err) != apperrors.CodeValidation {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeValidation)
	}

	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusOpen {
		t.Fatalf("rejected close must not mutate the ticket")
	}
}

func TestCloseByStaffNotifiesRequester(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")

	_, err := env.svc.Close(context.Background(), staff, CloseInput{TicketID: ticket.ID, Reason: "resolved offline"})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(env.notifier.direct) != 1 {
		t.Fatalf("expected 1 DM, got %d", len(env.notifier.direct))
	}
	dm := env.notifier.direct[0]
	if dm.target != "u1" {
		t.Fatalf("DM target = %s", dm.target)
	}
	if !strings.Contains(dm.msg.Body, "resolved offline") {
		t.Fatalf("DM body = %q, want the reason included", dm.msg.Body)
	}

	trail, _ := env.audit.ListByTicket(context.Background(), ticket.ID)
	if len(trail) != 1 || trail[0].Action != domain.AuditClosed {
		t.Fatalf("trail = %+v", trail)
	}
	if trail[0].Detail == nil || *trail[0].Detail != "reason: resolved offline" {
		t.Fatalf("detail = %v", trail[0].Detail)
	}
}

func TestCloseSucceedsWhenDMFails(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	env.notifier.directErr = errors.New("DMs disabled")

	closed, err := env.svc.Close(context.Background(), staff, CloseInput{TicketID: ticket.ID, Reason: "done"})
	if err != nil {
		t.Fatalf("close must tolerate DM failure: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed {
		t.Fatalf("status = %s", closed.Status)
	}
	if len(env.teardown.scheduled) != 1 {
		t.Fatalf("teardown not scheduled")
	}
}

func TestCloseTwiceReportsAlreadyClosed(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	owner := domain.Actor{ID: "u1", DisplayName: "Riva"}
	ctx := context.Background()

	if _, err := env.svc.Close(ctx, owner, CloseInput{TicketID: ticket.ID}); err != nil {
		t.Fatalf("first close: %v", err)
	}
	trailBefore, _ := env.audit.ListByTicket(ctx, ticket.ID)

	_, err := env.svc.Close(ctx, owner, CloseInput{TicketID: ticket.ID})
	if apperrors.CodeOf(err) != apperrors.CodeAlreadyClosed {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeAlreadyClosed)
	}
	trailAfter, _ := env.audit.ListByTicket(ctx, ticket.ID)
	if len(trailAfter) != len(trailBefore) {
		t.Fatalf("repeated close must not append audit events")
	}
}

func TestCloseStaffNoReasonOnClosedReportsAlreadyClosed(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	owner := domain.Actor{ID: "u1", DisplayName: "Riva"}
	ctx := context.Background()

	if _, err := env.svc.Close(ctx, owner, CloseInput{TicketID: ticket.ID}); err != nil {
		t.Fatalf("first close: %v", err)
	}

	_, err := env.svc.Close(ctx, staff, CloseInput{TicketID: ticket.ID})
	if apperrors.CodeOf(err) != apperrors.CodeAlreadyClosed {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeAlreadyClosed)
	}
}

func TestClosePermissionDenied(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	outsider := domain.Actor{ID: "x1", DisplayName: "Nox"}

	_, err := env.svc.Close(context.Background(), outsider, CloseInput{TicketID: ticket.ID, Reason: "nope"})
	if apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodePermissionDenied)
	}
	stored, _ := env.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusOpen {
		t.Fatalf("denied close must not mutate the ticket")
	}
	trail, _ := env.audit.ListByTicket(context.Background(), ticket.ID)
	if len(trail) != 0 {
		t.Fatalf("denied close must not append audit events")
	}
}

func TestAssignAdminOnly(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	newAssignee := domain.Actor{ID: "s2", DisplayName: "Pax"}

	_, err := env.svc.Assign(context.Background(), staff, ticket.ID, newAssignee)
	if apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("non-admin assign: code = %s", apperrors.CodeOf(err))
	}

	admin := domain.Actor{ID: "a1", DisplayName: "Root", Administrator: true}
	updated, err := env.svc.Assign(context.Background(), admin, ticket.ID, newAssignee)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != "s2" {
		t.Fatalf("assignee = %v", updated.AssigneeID)
	}
	trail, _ := env.audit.ListByTicket(context.Background(), ticket.ID)
	if len(trail) != 1 || trail[0].Action != domain.AuditAssigned {
		t.Fatalf("trail = %+v", trail)
	}
}

func TestGetRespectsViewPredicate(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	ctx := context.Background()

	owner := domain.Actor{ID: "u1", DisplayName: "Riva"}
	if _, err := env.svc.Get(ctx, owner, ticket.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := env.svc.Get(ctx, staff, ticket.ID); err != nil {
		t.Fatalf("staff get: %v", err)
	}
	outsider := domain.Actor{ID: "x1", DisplayName: "Nox"}
	if _, err := env.svc.Get(ctx, outsider, ticket.ID); apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("outsider get: code = %s", apperrors.CodeOf(err))
	}
}

func TestAuditTrailKeepsAppendOrder(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	ctx := context.Background()
	auditSvc := NewAuditService(env.audit, testLogger())

	auditSvc.Record(ctx, ticket.ID, domain.AuditCreated, staff, "category: general")
	auditSvc.Record(ctx, ticket.ID, domain.AuditMessage, staff, "looking into it")
	auditSvc.Record(ctx, ticket.ID, domain.AuditUserAdded, staff, "member: Pax")

	trail, err := env.svc.AuditTrail(ctx, staff, ticket.ID)
	if err != nil {
		t.Fatalf("trail: %v", err)
	}
	want := []domain.AuditAction{domain.AuditCreated, domain.AuditMessage, domain.AuditUserAdded}
	if len(trail) != len(want) {
		t.Fatalf("trail length = %d, want %d", len(trail), len(want))
	}
	for i, action := range want {
		if trail[i].Action != action {
			t.Fatalf("trail[%d] = %s, want %s", i, trail[i].Action, action)
		}
	}
}

func TestListStaffOnlyAndLimited(t *testing.T) {
	env := newLifecycleEnv()
	for i := 0; i < 25; i++ {
		env.openTicket(t, "u1")
	}
	ctx := context.Background()

	outsider := domain.Actor{ID: "x1", DisplayName: "Nox"}
	if _, err := env.svc.List(ctx, outsider, ListInput{GuildID: "g1"}); apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("outsider list: code = %s", apperrors.CodeOf(err))
	}

	tickets, err := env.svc.List(ctx, staff, ListInput{GuildID: "g1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 20 {
		t.Fatalf("list length = %d, want the 20 newest", len(tickets))
	}
}

func TestAddNoteAppendsToTrail(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	ctx := context.Background()

	if err := env.svc.AddNote(ctx, staff, ticket.ID, "checked the logs"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	outsider := domain.Actor{ID: "x1", DisplayName: "Nox"}
	if err := env.svc.AddNote(ctx, outsider, ticket.ID, "drive-by"); apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("outsider note: code = %s", apperrors.CodeOf(err))
	}

	trail, _ := env.audit.ListByTicket(ctx, ticket.ID)
	if len(trail) != 1 || trail[0].Action != domain.AuditMessage {
		t.Fatalf("trail = %+v", trail)
	}
	if trail[0].Detail == nil || *trail[0].Detail != "checked the logs" {
		t.Fatalf("detail = %v", trail[0].Detail)
	}
}

func TestAddParticipantGrantsAccess(t *testing.T) {
	env := newLifecycleEnv()
	ticket := env.openTicket(t, "u1")
	member := domain.Actor{ID: "u9", DisplayName: "Pax"}

	if err := env.svc.AddParticipant(context.Background(), staff, ticket.ID, member); err != nil {
		t.Fatalf("add participant: %v", err)
	}
	if len(env.provisioner.granted) != 1 {
		t.Fatalf("granted = %v", env.provisioner.granted)
	}
	trail, _ := env.audit.ListByTicket(context.Background(), ticket.ID)
	if len(trail) != 1 || trail[0].Action != domain.AuditUserAdded {
		t.Fatalf("trail = %+v", trail)
	}
}
