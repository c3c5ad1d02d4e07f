package dto

// GuildConfigRequest carries a partial configuration update. Absent
// fields keep their stored value.
type GuildConfigRequest struct {
	TicketCategoryID            *string `json:"ticket_category_id"`
	LogChannelID                *string `json:"log_channel_id"`
	StaffRoleID                 *string `json:"staff_role_id"`
	QueueChannelID              *string `json:"queue_channel_id"`
	SuggestionChannelID         *string `json:"suggestion_channel_id"`
	ApprovedSuggestionChannelID *string `json:"approved_suggestion_channel_id"`
}

// GuildConfigResponse payload.
type GuildConfigResponse struct {
	GuildID                     string  `json:"guild_id"`
	TicketCategoryID            *string `json:"ticket_category_id"`
	LogChannelID                *string `json:"log_channel_id"`
	StaffRoleID                 *string `json:"staff_role_id"`
	QueueChannelID              *string `json:"queue_channel_id"`
	SuggestionChannelID         *string `json:"suggestion_channel_id"`
	ApprovedSuggestionChannelID *string `json:"approved_suggestion_channel_id"`
}

// TemplateRequest payload.
type TemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// TemplateResponse payload.
type TemplateResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// PanelRequest payload.
type PanelRequest struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostPanelRequest payload.
type PostPanelRequest struct {
	ChannelID string `json:"channel_id"`
}

// StreamNotificationRequest payload.
type StreamNotificationRequest struct {
	StreamerID    string  `json:"streamer_id"`
	ChannelID     string  `json:"channel_id"`
	CustomMessage *string `json:"custom_message"`
}

// StreamAnnounceRequest payload.
type StreamAnnounceRequest struct {
	StreamerName string `json:"streamer_name"`
	URL          string `json:"url"`
}

// SuggestionRequest payload.
type SuggestionRequest struct {
	Marker  string `json:"marker"`
	Content string `json:"content"`
}

// SuggestionResponse payload.
type SuggestionResponse struct {
	Marker     string  `json:"marker"`
	AuthorName string  `json:"author_name"`
	Content    string  `json:"content"`
	Approved   bool    `json:"approved"`
	ApprovedBy *string `json:"approved_by,omitempty"`
}
