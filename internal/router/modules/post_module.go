package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-social/internal/interface/http"
	"github.com/oksasatya/go-ddd-social/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

// PostModule wires feeds and post interactions under /api/posts. All are protected.
type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager, rdb *redis.Client) *PostModule {
	return &PostModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *PostModule) Name() string { return "posts" }

func (m *PostModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/posts")
	g.Use(middleware.Auth(m.Redis, m.JWT))
	g.Use(middleware.RateLimit(m.Redis, middleware.Limit{Name: "posts", Max: 300, Window: time.Minute, Key: middleware.KeyByUserID()}))

	writes := middleware.RateLimit(m.Redis, middleware.Limit{Name: "post_writes", Max: 30, Window: time.Minute, Key: middleware.KeyByUserID()})
	{
		g.GET("/all", m.Handler.All)
		g.GET("/following", m.Handler.Following)
		g.GET("/likes/:id", m.Handler.Liked)
		g.GET("/user/:username", m.Handler.ByUser)
		g.POST("/create", writes, m.Handler.Create)
		g.POST("/like/:id", m.Handler.Like)
		g.POST("/comment/:id", writes, m.Handler.Comment)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
