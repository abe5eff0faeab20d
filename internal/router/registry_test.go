package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingModule struct{ name string }

func (m pingModule) Name() string { return m.name }

func (m pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reg := NewRegistry(engine, nil)
	reg.Use(func(c *gin.Context) { c.Set("mw", "seen"); c.Next() })
	reg.Add(pingModule{"a"}, pingModule{"b"})
	reg.RegisterAll()

	assert.Len(t, engine.Routes(), 2)
	for _, path := range []string{"/api/a", "/api/b"} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "seen", rec.Body.String(), path)
	}
}
