package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 / ULA clients,
// e.g. an in-cluster metrics scraper.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ipFromCtx(c))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate()
	}
}

// AllowMethods bypasses the limiter for the given HTTP methods.
func AllowMethods(methods ...string) AllowFunc {
	return func(c *gin.Context) bool {
		for _, m := range methods {
			if strings.EqualFold(c.Request.Method, m) {
				return true
			}
		}
		return false
	}
}

// AllowAny bypasses when any of fns does.
func AllowAny(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}
