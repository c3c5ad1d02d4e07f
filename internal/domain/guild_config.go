package domain

// GuildConfig is the single configuration record for one community
// instance. Updates have upsert semantics; fields left nil on update keep
// their stored value.
type GuildConfig struct {
	GuildID                     string
	TicketCategoryID            *string
	LogChannelID                *string
	StaffRoleID                 *string
	QueueChannelID              *string
	SuggestionChannelID         *string
	ApprovedSuggestionChannelID *string
}
