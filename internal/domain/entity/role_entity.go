package entity

import "time"

const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleWard     = "ward"
)

// Role represents an authorization role.
// One-to-many with User through users.role_id.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ManagerRole returns the role allowed to manage accounts of role, or "" when none is.
func ManagerRole(role string) string {
	switch role {
	case RoleDirector:
		return RoleAdmin
	case RoleWard:
		return RoleDirector
	}
	return ""
}
