package dto

import (
	"time"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	GuildID     string             `json:"guild_id"`
	Category    domain.Category    `json:"category"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Recruitment *RecruitmentFields `json:"recruitment,omitempty"`
}

// RecruitmentFields carries the recruitment form.
type RecruitmentFields struct {
	Nick     string `json:"nick"`
	Strength string `json:"strength"`
	Economy  string `json:"economy"`
}

// QueueEntryResponse payload.
type QueueEntryResponse struct {
	ID            int64           `json:"id"`
	GuildID       string          `json:"guild_id"`
	RequesterID   string          `json:"requester_id"`
	RequesterName string          `json:"requester_name"`
	Category      domain.Category `json:"category"`
	Title         string          `json:"title"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TicketResponse payload.
type TicketResponse struct {
	ID            int64               `json:"id"`
	GuildID       string              `json:"guild_id"`
	RequesterID   string              `json:"requester_id"`
	RequesterName string              `json:"requester_name"`
	Category      domain.Category     `json:"category"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        domain.TicketStatus `json:"status"`
	AssigneeID    *string             `json:"assignee_id"`
	ChannelID     *string             `json:"channel_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	ClosedBy      *string             `json:"closed_by,omitempty"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Reason string `json:"reason"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
}

// AddParticipantRequest payload.
type AddParticipantRequest struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Text string `json:"text"`
}

// AuditEventResponse payload.
type AuditEventResponse struct {
	ID        int64              `json:"id"`
	Action    domain.AuditAction `json:"action"`
	ActorID   string             `json:"actor_id"`
	ActorName string             `json:"actor_name"`
	Detail    *string            `json:"detail,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ClaimResponse payload.
type ClaimResponse struct {
	Ticket    TicketResponse `json:"ticket"`
	ChannelID string         `json:"channel_id"`
	Channel   string         `json:"channel"`
}

// StatsResponse payload.
type StatsResponse struct {
	Total            int64                     `json:"total"`
	Open             int64                     `json:"open"`
	Closed           int64                     `json:"closed"`
	UniqueRequesters int64                     `json:"unique_requesters"`
	CreatedToday     int64                     `json:"created_today"`
	ByCategory       map[domain.Category]int64 `json:"by_category"`
	QueueDepth       int64                     `json:"queue_depth"`
	ClosureRate      float64                   `json:"closure_rate"`
}
