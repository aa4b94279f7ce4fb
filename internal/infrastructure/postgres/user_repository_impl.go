package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	"github.com/oksasatya/prison-staff-admin/internal/domain/repository"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertUser,
			u.ID, u.RoleID, u.FirstName, u.LastName, u.Username, u.Email, u.Birthdate,
			u.PersonalPhone, u.HomePhone, u.Address, u.Password, u.State)
		if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
			return mapWriteError(err)
		}
		if _, err := tx.Exec(ctx, insertUserImage, u.ID, u.AvatarURL); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, selectUserByID, id)
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	return r.getOne(ctx, selectUserByLogin, login)
}

func (r *UserRepository) getOne(ctx context.Context, query, arg string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, updateUser,
			u.FirstName, u.LastName, u.Username, u.Email, u.Birthdate,
			u.PersonalPhone, u.HomePhone, u.Address, u.Password, u.ID)
		if err := row.Scan(&u.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return mapWriteError(err)
		}
		if _, err := tx.Exec(ctx, deleteUserImages, u.ID); err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
		if _, err := tx.Exec(ctx, insertUserImage, u.ID, u.AvatarURL); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, updateUserPassword, hash, id)
}

func (r *UserRepository) SetState(ctx context.Context, id string, state bool) error {
	return r.execOne(ctx, updateUserState, state, id)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListByRole(ctx context.Context, q repository.ListQuery) ([]entity.User, int, error) {
	pattern := "%" + escapeLike(q.Search) + "%"

	var total int
	if err := r.db.QueryRow(ctx, countUsersByRole, q.RoleID, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entity.User{}, 0, nil
	}

	rows, err := r.db.Query(ctx, selectUsersByRole, q.RoleID, pattern, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]entity.User, 0, q.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Exists(ctx context.Context, field, value, excludeID string) (bool, error) {
	var query string
	switch field {
	case "username":
		query = existsUsername
	case "email":
		query = existsEmail
	default:
		return false, fmt.Errorf("unique check on unsupported field %q", field)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, query, value, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(
		&u.ID, &u.RoleID, &u.RoleName, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&u.Birthdate, &u.PersonalPhone, &u.HomePhone, &u.Address,
		&u.Password, &u.State, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// mapWriteError turns a unique violation on username/email into a field conflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return validation.Conflict("username")
		case "users_email_key":
			return validation.Conflict("email")
		}
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ repository.UserRepository = (*UserRepository)(nil)
