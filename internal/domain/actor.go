package domain

// Actor is the authenticated identity on whose behalf an operation runs.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsClient() bool   { return a.Role == RoleClient }
func (a Actor) IsProvider() bool { return a.Role == RoleProvider }
func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
