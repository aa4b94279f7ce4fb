package router

import (
	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/internal/container"
	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	pginfra "github.com/oksasatya/prison-staff-admin/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/prison-staff-admin/internal/interface/http"
	"github.com/oksasatya/prison-staff-admin/internal/router/modules"
)

type Services struct {
	Auth     *application.AuthService
	Accounts *application.AccountService
}

func buildServices() Services {
	cfg := container.GetConfig()
	users := pginfra.NewUserRepository(container.GetPGPool())
	roles := pginfra.NewRoleRepository(container.GetPGPool())

	auth := application.NewAuthService(users, container.GetJWT(), container.GetRedis(), container.GetLogger(), cfg.SessionTTL)

	accounts := application.NewAccountService(
		users,
		roles,
		container.GetAvatarStore(),
		container.GetNotifier(),
		container.GetUserIndexer(),
		container.GetValidator(),
		container.GetLogger(),
		cfg.AvatarBaseURL,
	)
	accounts.Sessions = auth

	return Services{Auth: auth, Accounts: accounts}
}

// InitModules builds services from the container and registers every feature module.
// Call once at startup, before RegisterAll.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	svc := buildServices()
	logger := container.GetLogger()

	authHandler := handlers.NewAuthHandler(svc.Auth, logger, cfg.CookieDomain, cfg.CookieSecure)
	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))

	r.Add(modules.NewAccountModule("/directors", handlers.NewAccountHandler(svc.Accounts, entity.RoleDirector, logger), container.GetJWT()))
	r.Add(modules.NewAccountModule("/wards", handlers.NewAccountHandler(svc.Accounts, entity.RoleWard, logger), container.GetJWT()))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
