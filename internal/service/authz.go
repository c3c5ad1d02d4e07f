package service

import "github.com/gabriel-reiss/guildtickets/internal/domain"

// isStaff reports whether the actor may act as support staff for the
// guild: administrators always qualify, otherwise membership in the
// configured staff role is required.
func isStaff(actor domain.Actor, cfg *domain.GuildConfig) bool {
	if actor.Administrator {
		return true
	}
	if cfg == nil || cfg.StaffRoleID == nil {
		return false
	}
	return actor.HasRole(*cfg.StaffRoleID)
}

// canViewTicket applies the shared close/view predicate: the requester,
// staff, or an administrator.
func canViewTicket(actor domain.Actor, ticket *domain.Ticket, cfg *domain.GuildConfig) bool {
	if ticket.RequesterID == actor.ID {
		return true
	}
	return isStaff(actor, cfg)
}
