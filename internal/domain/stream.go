package domain

// StreamNotification configures the go-live announcement for one streamer.
// CustomMessage may contain {streamer} and {url} placeholders.
type StreamNotification struct {
	StreamerID    string
	GuildID       string
	ChannelID     string
	CustomMessage *string
}
