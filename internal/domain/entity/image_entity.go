package entity

import "time"

// Image is the avatar of exactly one user.
type Image struct {
	ID        string
	UserID    string
	Path      string
	CreatedAt time.Time
}
