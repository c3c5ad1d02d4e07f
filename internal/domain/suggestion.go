package domain

import "time"

// Suggestion is a community suggestion relayed by the platform gateway.
// Marker is the platform message ID stamped on the posted suggestion; it
// acts as the secondary index used to resolve approvals.
type Suggestion struct {
	ID         int64
	GuildID    string
	Marker     string
	AuthorID   string
	AuthorName string
	Content    string
	Approved   bool
	ApprovedBy *string
	CreatedAt  time.Time
	ApprovedAt *time.Time
}
