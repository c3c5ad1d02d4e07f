// Package platform declares the chat-platform collaborator surface the
// workflow core depends on. Implementations live in the gateway process;
// the core only ever calls these interfaces.
package platform

import "context"

// ChannelSpec describes the dedicated channel to provision for a ticket.
type ChannelSpec struct {
	GuildID string
	// ParentID is the configured ticket category container, if any.
	ParentID    string
	Name        string
	RequesterID string
	StaffID     string
}

// ProvisionedChannel references a channel created on the platform.
type ProvisionedChannel struct {
	ID   string
	Name string
}

// Provisioner creates and tears down per-ticket platform resources.
type Provisioner interface {
	CreateTicketChannel(ctx context.Context, spec ChannelSpec) (ProvisionedChannel, error)
	GrantAccess(ctx context.Context, channelID, userID string) error
	DeleteChannel(ctx context.Context, channelID, reason string) error
}

// Message is a platform-agnostic notification body.
type Message struct {
	Title string
	Body  string
}

// Notifier delivers messages to users and channels. Delivery failures are
// advisory; callers must never treat them as fatal.
type Notifier interface {
	SendDirect(ctx context.Context, userID string, msg Message) error
	SendChannel(ctx context.Context, channelID string, msg Message) error
}
