package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// clientIPHeaders are consulted in order; the first parseable address wins.
// X-Forwarded-For contributes its left-most entry.
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

func parseHeaderIP(v string) (string, bool) {
	first, _, _ := strings.Cut(v, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// RealIP stores the client address under CtxRealIPKey for rate limiting and logs.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		for _, h := range clientIPHeaders {
			if v, ok := parseHeaderIP(c.GetHeader(h)); ok {
				ip = v
				break
			}
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}
