package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-social/internal/interface/middleware"
)

// DebugModule exposes expvar and Prometheus metrics. Private-network callers bypass the limiter.
type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, middleware.Limit{
		Name:   "debug",
		Max:    120,
		Window: time.Minute,
		Key:    middleware.KeyByIPAndPath(),
		Allow:  middleware.AllowAny(middleware.AllowPrivateIP(), middleware.AllowMethods(http.MethodHead)),
	})
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
}
