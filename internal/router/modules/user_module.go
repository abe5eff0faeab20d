package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-social/internal/interface/http"
	"github.com/oksasatya/go-ddd-social/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

// UserModule wires profile and follow-graph routes under /api/users. All are protected.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.Use(middleware.Auth(m.Redis, m.JWT))
	g.Use(
		middleware.RateLimit(m.Redis, middleware.Limit{Name: "users_ip", Max: 300, Window: time.Minute, Key: middleware.KeyByIP()}),
		middleware.RateLimit(m.Redis, middleware.Limit{Name: "users", Max: 120, Window: time.Minute, Key: middleware.KeyByUserID()}),
	)
	{
		g.GET("/profile/:username", m.Handler.GetProfile)
		g.GET("/suggested", m.Handler.Suggested)
		g.POST("/follow/:id", m.Handler.Follow)
		g.POST("/update", m.Handler.UpdateProfile)
		g.GET("/search", m.Handler.Search)
	}
}
