package domain

import "time"

// AuditAction captures what happened to a ticket.
type AuditAction string

const (
	AuditCreated   AuditAction = "created"
	AuditClosed    AuditAction = "closed"
	AuditAssigned  AuditAction = "assigned"
	AuditUserAdded AuditAction = "user_added"
	AuditMessage   AuditAction = "message"
)

// AuditEvent is an immutable trail entry for a ticket. Events are only ever
// appended and read back in ascending timestamp order.
type AuditEvent struct {
	ID        int64
	TicketID  int64
	Action    AuditAction
	ActorID   string
	ActorName string
	Detail    *string
	CreatedAt time.Time
}
