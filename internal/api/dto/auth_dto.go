package dto

import "time"

// ActorTokenRequest is how the gateway exchanges its API key plus the
// acting member's identity for a short-lived actor token.
type ActorTokenRequest struct {
	APIKey        string   `json:"api_key"`
	ActorID       string   `json:"actor_id"`
	DisplayName   string   `json:"display_name"`
	Administrator bool     `json:"administrator"`
	RoleIDs       []string `json:"role_ids"`
}

// ActorTokenResponse payload.
type ActorTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CommandRequest is a named interaction relayed by the gateway.
type CommandRequest struct {
	Command   string            `json:"command"`
	GuildID   string            `json:"guild_id"`
	ChannelID string            `json:"channel_id"`
	Args      map[string]string `json:"args"`
}

// CommandResponse payload.
type CommandResponse struct {
	Content string `json:"content"`
	Private bool   `json:"private"`
}
