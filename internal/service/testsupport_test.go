package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
)

type memoryQueueRepo struct {
	mu          sync.Mutex
	nextID      int64
	entries     []domain.QueueEntry
	openTickets map[string]int64
	// tickets, when set, is consulted for the open-ticket check the way
	// the real store queries the tickets table.
	tickets *memoryTicketRepo
}

func newMemoryQueueRepo() *memoryQueueRepo {
	return &memoryQueueRepo{openTickets: make(map[string]int64)}
}

func (r *memoryQueueRepo) Admit(_ context.Context, entry *domain.QueueEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.GuildID == entry.GuildID && existing.RequesterID == entry.RequesterID && existing.Category == entry.Category {
			return 0, repository.ErrDuplicateQueueEntry
		}
	}
	if ticketID, ok := r.openTickets[entry.GuildID+"/"+entry.RequesterID]; ok {
		return ticketID, repository.ErrDuplicateOpenTicket
	}
	if r.tickets != nil {
		if ticketID, ok := r.tickets.openTicketFor(entry.GuildID, entry.RequesterID); ok {
			return ticketID, repository.ErrDuplicateOpenTicket
		}
	}
	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return 0, nil
}

func (r *memoryQueueRepo) ClaimOldest(_ context.Context, guildID string) (*domain.QueueEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, entry := range r.entries {
		if entry.GuildID != guildID {
			continue
		}
		if idx == -1 {
			idx = i
			continue
		}
		oldest := r.entries[idx]
		if entry.CreatedAt.Before(oldest.CreatedAt) ||
			(entry.CreatedAt.Equal(oldest.CreatedAt) && entry.ID < oldest.ID) {
			idx = i
		}
	}
	if idx == -1 {
		return nil, false, nil
	}
	claimed := r.entries[idx]
	r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	return &claimed, true, nil
}

func (r *memoryQueueRepo) Restore(_ context.Context, entry *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Matches the store's ON CONFLICT DO NOTHING: a re-submitted entry for
	// the same requester and category already represents the request.
	for _, existing := range r.entries {
		if existing.GuildID == entry.GuildID && existing.RequesterID == entry.RequesterID && existing.Category == entry.Category {
			return nil
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryQueueRepo) PendingCount(_ context.Context, guildID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, entry := range r.entries {
		if entry.GuildID == guildID {
			count++
		}
	}
	return count, nil
}

func (r *memoryQueueRepo) setOpenTicket(guildID, requesterID string, ticketID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openTickets[guildID+"/"+requesterID] = ticketID
}

type memoryTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket
	// createErr forces Create to fail.
	createErr error
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[int64]*domain.Ticket)}
}

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	ticket.ID = r.nextID
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memoryTicketRepo) openTicketFor(guildID, requesterID string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.GuildID == guildID && ticket.RequesterID == requesterID && ticket.Status == domain.TicketStatusOpen {
			return ticket.ID, true
		}
	}
	return 0, false
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memoryTicketRepo) GetOpenByChannel(_ context.Context, channelID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ChannelID != nil && *ticket.ChannelID == channelID && ticket.Status == domain.TicketStatusOpen {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.GuildID != filter.GuildID {
			continue
		}
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && ticket.Category != *filter.Category {
			continue
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryTicketRepo) Close(_ context.Context, id int64, closedBy string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusOpen {
		return false, nil
	}
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedBy = &closedBy
	ticket.ClosedAt = &at
	ticket.UpdatedAt = at
	return true, nil
}

func (r *memoryTicketRepo) SetAssignee(_ context.Context, id int64, assigneeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusOpen {
		return false, nil
	}
	ticket.AssigneeID = &assigneeID
	return true, nil
}

func (r *memoryTicketRepo) Stats(_ context.Context, guildID string) (*domain.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.TicketStats{ByCategory: make(map[domain.Category]int64)}
	requesters := make(map[string]struct{})
	for _, ticket := range r.tickets {
		if ticket.GuildID != guildID {
			continue
		}
		stats.Total++
		if ticket.Status == domain.TicketStatusOpen {
			stats.Open++
		} else {
			stats.Closed++
		}
		requesters[ticket.RequesterID] = struct{}{}
		stats.ByCategory[ticket.Category]++
	}
	stats.UniqueRequesters = int64(len(requesters))
	return stats, nil
}

type memoryAuditRepo struct {
	mu        sync.Mutex
	nextID    int64
	events    []domain.AuditEvent
	appendErr error
}

func newMemoryAuditRepo() *memoryAuditRepo {
	return &memoryAuditRepo{}
}

func (r *memoryAuditRepo) Append(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextID++
	event.ID = r.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryAuditRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEvent
	for _, event := range r.events {
		if event.TicketID == ticketID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type memoryConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.GuildConfig
}

func newMemoryConfigRepo() *memoryConfigRepo {
	return &memoryConfigRepo{configs: make(map[string]*domain.GuildConfig)}
}

func (r *memoryConfigRepo) Get(_ context.Context, guildID string) (*domain.GuildConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	if !ok {
		return &domain.GuildConfig{GuildID: guildID}, nil
	}
	clone := *cfg
	return &clone, nil
}

func (r *memoryConfigRepo) Upsert(_ context.Context, cfg *domain.GuildConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cfg
	r.configs[cfg.GuildID] = &clone
	return nil
}

func (r *memoryConfigRepo) setStaffRole(guildID, roleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	if !ok {
		cfg = &domain.GuildConfig{GuildID: guildID}
		r.configs[guildID] = cfg
	}
	cfg.StaffRoleID = &roleID
}

type memorySuggestionRepo struct {
	mu          sync.Mutex
	nextID      int64
	suggestions map[string]*domain.Suggestion
}

func newMemorySuggestionRepo() *memorySuggestionRepo {
	return &memorySuggestionRepo{suggestions: make(map[string]*domain.Suggestion)}
}

func (r *memorySuggestionRepo) Create(_ context.Context, suggestion *domain.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	suggestion.ID = r.nextID
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now()
	}
	clone := *suggestion
	r.suggestions[suggestion.GuildID+"/"+suggestion.Marker] = &clone
	return nil
}

func (r *memorySuggestionRepo) GetByMarker(_ context.Context, guildID, marker string) (*domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suggestion, ok := r.suggestions[guildID+"/"+marker]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *suggestion
	return &clone, nil
}

func (r *memorySuggestionRepo) MarkApproved(_ context.Context, guildID, marker, approvedBy string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suggestion, ok := r.suggestions[guildID+"/"+marker]
	if !ok || suggestion.Approved {
		return false, nil
	}
	suggestion.Approved = true
	suggestion.ApprovedBy = &approvedBy
	suggestion.ApprovedAt = &at
	return true, nil
}

type provisionCall struct {
	spec platform.ChannelSpec
}

type fakeProvisioner struct {
	mu         sync.Mutex
	nextID     int
	created    []provisionCall
	deleted    []string
	granted    []string
	createErr  error
	onCreate   func()
	channelIDs []string
}

func (p *fakeProvisioner) CreateTicketChannel(_ context.Context, spec platform.ChannelSpec) (platform.ProvisionedChannel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onCreate != nil {
		p.onCreate()
	}
	if p.createErr != nil {
		return platform.ProvisionedChannel{}, p.createErr
	}
	p.nextID++
	id := fmt.Sprintf("chan-%d", p.nextID)
	p.created = append(p.created, provisionCall{spec: spec})
	p.channelIDs = append(p.channelIDs, id)
	return platform.ProvisionedChannel{ID: id, Name: spec.Name}, nil
}

func (p *fakeProvisioner) GrantAccess(_ context.Context, channelID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.granted = append(p.granted, channelID+"/"+userID)
	return nil
}

func (p *fakeProvisioner) DeleteChannel(_ context.Context, channelID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, channelID)
	return nil
}

type sentMessage struct {
	target string
	msg    platform.Message
}

type fakeNotifier struct {
	mu        sync.Mutex
	direct    []sentMessage
	channel   []sentMessage
	directErr error
}

func (n *fakeNotifier) SendDirect(_ context.Context, userID string, msg platform.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.directErr != nil {
		return n.directErr
	}
	n.direct = append(n.direct, sentMessage{target: userID, msg: msg})
	return nil
}

func (n *fakeNotifier) SendChannel(_ context.Context, channelID string, msg platform.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channel = append(n.channel, sentMessage{target: channelID, msg: msg})
	return nil
}

type scheduledTeardown struct {
	channelID string
	due       time.Time
}

type fakeTeardown struct {
	mu        sync.Mutex
	scheduled []scheduledTeardown
	cancelled []string
}

func (f *fakeTeardown) Schedule(_ context.Context, channelID, _ string, due time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, scheduledTeardown{channelID: channelID, due: due})
	return nil
}

func (f *fakeTeardown) Cancel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, channelID)
	return nil
}

var errStoreDown = errors.New("store down")

func testLogger() *zap.Logger {
	return zap.NewNop()
}
