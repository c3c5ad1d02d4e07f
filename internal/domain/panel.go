package domain

// InfoPanel is a named informational embed an administrator configures once
// and posts on demand. Names are unique within a guild.
type InfoPanel struct {
	ID      int64
	GuildID string
	Name    string
	Title   string
	Content string
}
