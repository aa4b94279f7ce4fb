package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/prison-staff-admin/internal/container"
	"github.com/oksasatya/prison-staff-admin/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register serves expvar (account counters included) to private networks only.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.GET("/debug/vars", privateOnly(), rl, gin.WrapH(expvar.Handler()))
}

func privateOnly() gin.HandlerFunc {
	allow := middleware.AllowPrivateIP()
	return func(c *gin.Context) {
		if !allow(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
