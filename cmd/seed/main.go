package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/prison-staff-admin/config"
	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	"github.com/oksasatya/prison-staff-admin/internal/domain/repository"
	pginfra "github.com/oksasatya/prison-staff-admin/internal/infrastructure/postgres"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
)

// Seeds the first admin. Directors and wards are created through the API afterwards.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	roles := pginfra.NewRoleRepository(pool)

	role, err := roles.GetByName(ctx, entity.RoleAdmin)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Fatal("admin role missing; run the API once to apply migrations")
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to load admin role")
	}

	existing, err := users.GetByLogin(ctx, cfg.SeedAdminUsername)
	if err == nil {
		logger.WithField("user_id", existing.ID).Info("admin already seeded")
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logger.WithError(err).Fatal("failed to look up admin")
	}

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}
	u := &entity.User{
		ID:            uuid.NewString(),
		RoleID:        role.ID,
		RoleName:      role.Name,
		FirstName:     "System",
		LastName:      "Administrator",
		Username:      cfg.SeedAdminUsername,
		Email:         cfg.SeedAdminEmail,
		Birthdate:     "1980-01-01",
		PersonalPhone: "0000000000",
		HomePhone:     "000000000",
		Address:       "Head office",
		Password:      hash,
		State:         true,
	}
	u.AvatarURL = application.AvatarURL(cfg.AvatarBaseURL, u.FirstName, u.LastName)
	if err := users.Create(ctx, u); err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithFields(map[string]any{"user_id": u.ID, "username": u.Username}).Info("seeded admin")
}
