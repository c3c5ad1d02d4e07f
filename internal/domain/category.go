package domain

// Category enumerates the fixed set of support request categories.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryReport      Category = "report"
	CategoryRecruitment Category = "recruitment"
	CategoryTechnical   Category = "technical"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryReport, CategoryRecruitment, CategoryTechnical:
		return true
	}
	return false
}

// ChannelSlug is the prefix used when naming a ticket's dedicated channel.
func (c Category) ChannelSlug() string {
	switch c {
	case CategoryGeneral:
		return "ticket-general"
	case CategoryReport:
		return "report"
	case CategoryRecruitment:
		return "recruitment"
	case CategoryTechnical:
		return "tech-support"
	default:
		return "ticket"
	}
}

// Label is the human-readable category name used in notifications.
func (c Category) Label() string {
	switch c {
	case CategoryGeneral:
		return "General Support"
	case CategoryReport:
		return "Player Report"
	case CategoryRecruitment:
		return "Recruitment"
	case CategoryTechnical:
		return "Technical Support"
	default:
		return string(c)
	}
}
