package domain

// Actor identifies the platform user on whose behalf an operation runs.
// Role membership and the administrator flag come from the chat-platform
// gateway; this service only evaluates them.
type Actor struct {
	ID            string
	DisplayName   string
	Administrator bool
	RoleIDs       []string
}

// HasRole reports whether the actor holds the given platform role.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
