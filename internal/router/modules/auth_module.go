package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-social/internal/interface/http"
	"github.com/oksasatya/go-ddd-social/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

// AuthModule wires account routes.
// Public: POST /api/auth/signup, /login, /refresh
// Protected: POST /api/auth/logout, GET /api/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Name: "signup", Max: 5, Window: time.Minute, Key: middleware.KeyByIP()})
	loginLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Name: "login", Max: 10, Window: time.Minute, Key: middleware.KeyByIP()})
	refreshLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Name: "refresh", Max: 60, Window: time.Minute, Key: middleware.KeyByIP()})

	g := rg.Group("/auth")
	g.POST("/signup", signupLimiter, m.Handler.Signup)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := g.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
