package application

import (
	"context"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
)

// AvatarStore keeps avatar images and returns the URL they are served from.
type AvatarStore interface {
	// Save stores the image generated at sourceURL for userID.
	Save(ctx context.Context, userID, sourceURL string) (string, error)
	// Delete removes an image previously returned by Save.
	Delete(ctx context.Context, url string) error
}

type NotificationKind string

const (
	NotifyRegistered         NotificationKind = "registered"
	NotifyCredentialsChanged NotificationKind = "credentials_changed"
)

// Notification discloses a plaintext credential to its owner exactly once.
type Notification struct {
	Kind     NotificationKind
	To       string
	FullName string
	Username string
	RoleName string
	Password string
}

// Notifier hands notifications to a delivery channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// UserIndexer mirrors users into a full-text index.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, role, q string, size int) ([]map[string]any, error)
}

// SessionRevoker ends the login session of a user.
type SessionRevoker interface {
	Revoke(ctx context.Context, userID string) error
}
