package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	"github.com/oksasatya/prison-staff-admin/internal/domain/repository"
)

type RoleRepository struct {
	db DB
}

func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.db.QueryRow(ctx, selectRoleByName, name).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
