package entity

// Actor is the authenticated operator on whose behalf an operation runs.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

// CanManage reports whether the actor may manage accounts of role.
func (a Actor) CanManage(role string) bool {
	m := ManagerRole(role)
	return m != "" && a.Role == m
}
