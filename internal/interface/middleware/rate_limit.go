package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-social/pkg/metrics"
	"github.com/oksasatya/go-ddd-social/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc names the caller a request is counted against.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + ipFromCtx(c) }
}

// KeyByIPAndPath counts each route separately per client IP.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID counts authenticated callers by user id and anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "user:" + uid
		}
		return "user:anon:ip:" + ipFromCtx(c)
	}
}

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// Limit is one fixed-window bucket. Name keeps limiters that share a KeyFunc
// from sharing counters.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

// INCR, arm the window on the first hit, and report the remaining window in
// one round trip. Returns {count, pttl}.
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

var skipPreflight = AllowMethods(http.MethodOptions)

// RateLimit enforces l against Redis and sets the X-RateLimit-* headers. A nil
// client or an incomplete Limit disables it; Redis errors fail open.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if skipPreflight(c) || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}

		key := "rl:" + l.Name + ":" + l.Key(c)
		res, err := windowScript.Run(c.Request.Context(), rdb, []string{key}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, pttl := int(res[0]), time.Duration(res[1])*time.Millisecond
		resetSec := 0
		if pttl > 0 {
			resetSec = int((pttl + time.Second - 1) / time.Second)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > l.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			metrics.RateLimited.WithLabelValues(l.Name).Inc()
			response.AbortError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
