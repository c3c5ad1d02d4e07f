package events

import (
	"time"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketQueued       EventType = "ticket_queued"
	EventTicketClaimed      EventType = "ticket_claimed"
	EventTicketClosed       EventType = "ticket_closed"
	EventTicketAssigned     EventType = "ticket_assigned"
	EventSuggestionApproved EventType = "suggestion_approved"
)

// Event represents a state change emitted by services. Payloads carry
// enough data for the presentation layer to render without store access.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GuildID   string      `json:"guild_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketQueuedPayload payload.
type TicketQueuedPayload struct {
	QueueEntryID  int64           `json:"queue_entry_id"`
	RequesterID   string          `json:"requester_id"`
	RequesterName string          `json:"requester_name"`
	Category      domain.Category `json:"category"`
	Title         string          `json:"title"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	TicketID      int64           `json:"ticket_id"`
	RequesterID   string          `json:"requester_id"`
	RequesterName string          `json:"requester_name"`
	StaffID       string          `json:"staff_id"`
	StaffName     string          `json:"staff_name"`
	Category      domain.Category `json:"category"`
	Title         string          `json:"title"`
	ChannelID     string          `json:"channel_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	TicketID   int64  `json:"ticket_id"`
	Title      string `json:"title"`
	ClosedBy   string `json:"closed_by"`
	CloserName string `json:"closer_name"`
	Reason     string `json:"reason,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID     int64  `json:"ticket_id"`
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	AssignedBy   string `json:"assigned_by"`
}

// SuggestionApprovedPayload payload.
type SuggestionApprovedPayload struct {
	Marker     string `json:"marker"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	ApprovedBy string `json:"approved_by"`
}
