package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

var staff = domain.Actor{ID: "s1", DisplayName: "Mira", RoleIDs: []string{"staff-role"}}

type dispatchEnv struct {
	queue       *memoryQueueRepo
	tickets     *memoryTicketRepo
	audit       *memoryAuditRepo
	configs     *memoryConfigRepo
	provisioner *fakeProvisioner
	notifier    *fakeNotifier
	svc         *DispatchService
}

func newDispatchEnv() *dispatchEnv {
	env := &dispatchEnv{
		queue:       newMemoryQueueRepo(),
		tickets:     newMemoryTicketRepo(),
		audit:       newMemoryAuditRepo(),
		configs:     newMemoryConfigRepo(),
		provisioner: &fakeProvisioner{},
		notifier:    &fakeNotifier{},
	}
	env.configs.setStaffRole("g1", "staff-role")
	auditSvc := NewAuditService(env.audit, testLogger())
	env.svc = NewDispatchService(env.queue, env.tickets, env.configs, auditSvc,
		env.provisioner, env.notifier, events.NewInMemoryDispatcher(), testLogger())
	return env
}

func (env *dispatchEnv) enqueue(t *testing.T, requesterID, title string, at time.Time) {
	t.Helper()
	entry := &domain.QueueEntry{
		GuildID:       "g1",
		RequesterID:   requesterID,
		RequesterName: "user-" + requesterID,
		Category:      domain.CategoryGeneral,
		Title:         title,
		Description:   "details",
		CreatedAt:     at,
	}
	if _, err := env.queue.Admit(context.Background(), entry); err != nil {
		t.Fatalf("enqueue %s: %v", requesterID, err)
	}
}

func TestClaimNextFollowsQueueOrder(t *testing.T) {
	env := newDispatchEnv()
	base := time.Now()
	env.enqueue(t, "u1", "first", base)
	env.enqueue(t, "u2", "second", base.Add(time.Second))
	env.enqueue(t, "u3", "third", base.Add(2*time.Second))

	ctx := context.Background()
	for _, want := range []string{"first", "second", "third"} {
		claim, ok, err := env.svc.ClaimNext(ctx, "g1", staff)
		if err != nil {
			t.Fatalf("claim: %v", err)
		}
		if !ok {
			t.Fatalf("queue empty before claiming %q", want)
		}
		if claim.Ticket.Title != want {
			t.Fatalf("claimed %q, want %q", claim.Ticket.Title, want)
		}
		if claim.Ticket.Status != domain.TicketStatusOpen {
			t.Fatalf("status = %s", claim.Ticket.Status)
		}
		if claim.Ticket.AssigneeID == nil || *claim.Ticket.AssigneeID != staff.ID {
			t.Fatalf("assignee = %v", claim.Ticket.AssigneeID)
		}
	}

	_, ok, err := env.svc.ClaimNext(ctx, "g1", staff)
	if err != nil {
		t.Fatalf("claim on empty queue: %v", err)
	}
	if ok {
		t.Fatalf("expected empty queue")
	}
}

func TestClaimNextRequiresStaff(t *testing.T) {
	env := newDispatchEnv()
	env.enqueue(t, "u1", "first", time.Now())

	outsider := domain.Actor{ID: "x1", DisplayName: "Nox"}
	_, _, err := env.svc.ClaimNext(context.Background(), "g1", outsider)
	if apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodePermissionDenied)
	}
	if count, _ := env.queue.PendingCount(context.Background(), "g1"); count != 1 {
		t.Fatalf("queue depth = %d, want 1", count)
	}
}

func TestClaimNextRecordsCreationAudit(t *testing.T) {
	env := newDispatchEnv()
	env.enqueue(t, "u1", "first", time.Now())

	claim, ok, err := env.svc.ClaimNext(context.Background(), "g1", staff)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	trail, err := env.audit.ListByTicket(context.Background(), claim.Ticket.ID)
	if err != nil {
		t.Fatalf("trail: %v", err)
	}
	if len(trail) != 1 {
		t.Fatalf("trail length = %d, want 1", len(trail))
	}
	if trail[0].Action != domain.AuditCreated {
		t.Fatalf("action = %s", trail[0].Action)
	}
	if trail[0].ActorID != staff.ID {
		t.Fatalf("actor = %s", trail[0].ActorID)
	}
	if len(env.notifier.channel) != 1 {
		t.Fatalf("expected greeting message, got %d", len(env.notifier.channel))
	}
}

func TestClaimNextProvisionFailureRestoresEntry(t *testing.T) {
	env := newDispatchEnv()
	enqueuedAt := time.Now().Add(-time.Minute)
	env.enqueue(t, "u1", "first", enqueuedAt)
	env.provisioner.createErr = errors.New("platform down")

	_, _, err := env.svc.ClaimNext(context.Background(), "g1", staff)
	if apperrors.CodeOf(err) != apperrors.CodeProvisionFailure {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeProvisionFailure)
	}

	// The entry is back with its original timestamp, so it is claimed
	// first once provisioning recovers.
	env.provisioner.createErr = nil
	env.enqueue(t, "u2", "second", time.Now())
	claim, ok, err := env.svc.ClaimNext(context.Background(), "g1", staff)
	if err != nil || !ok {
		t.Fatalf("claim after recovery: ok=%v err=%v", ok, err)
	}
	if claim.Ticket.Title != "first" {
		t.Fatalf("claimed %q, want the restored entry", claim.Ticket.Title)
	}
}

func TestClaimNextRestoreToleratesResubmittedEntry(t *testing.T) {
	env := newDispatchEnv()
	env.enqueue(t, "u1", "first", time.Now().Add(-time.Minute))
	env.provisioner.createErr = errors.New("platform down")
	// The requester re-submits in the window between the pop and the
	// failed provision.
	env.provisioner.onCreate = func() {
		env.enqueue(t, "u1", "resubmitted", time.Now())
	}

	_, _, err := env.svc.ClaimNext(context.Background(), "g1", staff)
	if apperrors.CodeOf(err) != apperrors.CodeProvisionFailure {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeProvisionFailure)
	}

	// The re-submitted entry stands in for the request; the restore must
	// not duplicate it or drop it.
	if count, _ := env.queue.PendingCount(context.Background(), "g1"); count != 1 {
		t.Fatalf("queue depth = %d, want 1", count)
	}
	env.provisioner.createErr = nil
	env.provisioner.onCreate = nil
	claim, ok, err := env.svc.ClaimNext(context.Background(), "g1", staff)
	if err != nil || !ok {
		t.Fatalf("claim after recovery: ok=%v err=%v", ok, err)
	}
	if claim.Ticket.Title != "resubmitted" {
		t.Fatalf("claimed %q, want the re-submitted entry", claim.Ticket.Title)
	}
}

func TestClaimNextTicketInsertFailureCleansUp(t *testing.T) {
	env := newDispatchEnv()
	env.enqueue(t, "u1", "first", time.Now())
	env.tickets.createErr = errStoreDown

	_, _, err := env.svc.ClaimNext(context.Background(), "g1", staff)
	if apperrors.CodeOf(err) != apperrors.CodeStoreUnavailable {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeStoreUnavailable)
	}
	if len(env.provisioner.deleted) != 1 {
		t.Fatalf("expected provisioned channel to be deleted, got %d deletions", len(env.provisioner.deleted))
	}
	if count, _ := env.queue.PendingCount(context.Background(), "g1"); count != 1 {
		t.Fatalf("queue depth = %d, want restored entry", count)
	}
}

func TestClaimNextConcurrentClaimsNeverShareEntries(t *testing.T) {
	env := newDispatchEnv()
	base := time.Now()
	const entries = 3
	const claimers = 8
	env.enqueue(t, "u1", "e1", base)
	env.enqueue(t, "u2", "e2", base.Add(time.Second))
	env.enqueue(t, "u3", "e3", base.Add(2*time.Second))

	var wg sync.WaitGroup
	type outcome struct {
		title string
		ok    bool
		err   error
	}
	results := make(chan outcome, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claim, ok, err := env.svc.ClaimNext(context.Background(), "g1", staff)
			out := outcome{ok: ok, err: err}
			if ok {
				out.title = claim.Ticket.Title
			}
			results <- out
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]int)
	var successes int
	for out := range results {
		if out.err != nil {
			t.Fatalf("claim error: %v", out.err)
		}
		if out.ok {
			successes++
			seen[out.title]++
		}
	}
	if successes != entries {
		t.Fatalf("successes = %d, want %d", successes, entries)
	}
	for title, n := range seen {
		if n != 1 {
			t.Fatalf("entry %q claimed %d times", title, n)
		}
	}
}
