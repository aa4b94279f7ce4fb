package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/prison-staff-admin/internal/container"
	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	handlers "github.com/oksasatya/prison-staff-admin/internal/interface/http"
	"github.com/oksasatya/prison-staff-admin/internal/interface/middleware"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
)

// AccountModule exposes the lifecycle of one personnel role under prefix.
// Only the managing role passes RequireRole; the service checks again.
type AccountModule struct {
	Prefix  string
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(prefix string, h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Prefix: prefix, Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group(m.Prefix)
	g.Use(
		middleware.Auth(rdb, m.JWT),
		middleware.RequireRole(entity.ManagerRole(m.Handler.Role)),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		g.GET("", m.Handler.List)
		g.GET("/search", m.Handler.Search)
		g.POST("", m.Handler.Create)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.ToggleStatus)
		g.POST("/:id/credentials", m.Handler.ResetCredentials)
	}
}
