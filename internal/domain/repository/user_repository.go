package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// ListQuery selects one page of the users of a role.
type ListQuery struct {
	RoleID string
	Search string // substring of username; empty means all
	Limit  int
	Offset int
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and its avatar image in one transaction.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	// Update overwrites the mutable fields of u and replaces its avatar image in one transaction.
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	SetState(ctx context.Context, id string, state bool) error
	ListByRole(ctx context.Context, q ListQuery) ([]entity.User, int, error)
	// Exists reports whether field (username or email) holds value for a user other than excludeID.
	Exists(ctx context.Context, field, value, excludeID string) (bool, error)
}

// RoleRepository resolves roles by name.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Role, error)
}
