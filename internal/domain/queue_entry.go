package domain

import "time"

// QueueEntry is an admitted support request waiting for a staff claim.
// At most one entry exists per (guild, requester, category); an entry is
// consumed exactly once, becoming an open Ticket.
type QueueEntry struct {
	ID            int64
	GuildID       string
	RequesterID   string
	RequesterName string
	Category      Category
	Title         string
	Description   string
	CreatedAt     time.Time
}
