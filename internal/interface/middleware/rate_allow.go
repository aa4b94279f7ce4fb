package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowFunc returns true when a request bypasses the limit.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP lets loopback and private network clients through.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
	}
}
