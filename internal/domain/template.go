package domain

// ResponseTemplate is a per-guild canned staff reply. Names are unique
// within a guild and stored lowercased.
type ResponseTemplate struct {
	ID      int64
	GuildID string
	Name    string
	Content string
}
