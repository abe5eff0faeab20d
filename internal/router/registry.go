package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects modules and API-wide middleware, then mounts them in order.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Logger      *logrus.Logger
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), Logger: logger}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll applies middleware first so it covers every module route.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		before := len(r.Engine.Routes())
		m.Register(r.API)
		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{
				"module": m.Name(),
				"routes": len(r.Engine.Routes()) - before,
			}).Debug("module registered")
		}
	}
}
