package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for personnel accounts.
// Password holds a bcrypt hash, Birthdate an ISO (Y-m-d) date and State the active flag.
type User struct {
	ID            string
	RoleID        string
	RoleName      string
	FirstName     string
	LastName      string
	Username      string
	Email         string
	Birthdate     string
	PersonalPhone string
	HomePhone     string
	Address       string
	Password      string
	State         bool
	AvatarURL     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StateLabel names the current state flag.
func (u *User) StateLabel() string {
	if u.State {
		return "active"
	}
	return "inactive"
}
