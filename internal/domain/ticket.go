package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is the durable record of one accepted support request, from the
// moment a queue entry is claimed until (and after) closure. Closed is
// terminal; tickets are never deleted.
type Ticket struct {
	ID            int64
	GuildID       string
	RequesterID   string
	RequesterName string
	Category      Category
	Title         string
	Description   string
	Status        TicketStatus
	AssigneeID    *string
	ChannelID     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedBy      *string
	ClosedAt      *time.Time
}

// TicketStats aggregates counters for the staff overview.
type TicketStats struct {
	Total            int64
	Open             int64
	Closed           int64
	UniqueRequesters int64
	CreatedToday     int64
	ByCategory       map[Category]int64
}
