package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func echo(key string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, c.GetString(key)) }
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequestID(), echo(CtxRequestIDKey))

	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"minted", "", false},
		{"reused", "abc-123_DEF", true},
		{"rejected", "bad id\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			id := rec.Body.String()
			assert.NotEmpty(t, id)
			assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.inbound, id)
			} else {
				assert.NotEqual(t, tt.inbound, id)
			}
		})
	}
}

func TestRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RealIP(), echo(CtxRealIPKey))

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare first", map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.9"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"garbage skipped", map[string]string{"X-Real-IP": "nope", "X-Forwarded-For": "198.51.100.2"}, "198.51.100.2"},
		{"fallback", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAllowFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := func(method, ip string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(method, "/", nil)
		c.Set(CtxRealIPKey, ip)
		return c
	}

	private := AllowPrivateIP()
	assert.True(t, private(ctx(http.MethodGet, "10.1.2.3")))
	assert.True(t, private(ctx(http.MethodGet, "::1")))
	assert.False(t, private(ctx(http.MethodGet, "203.0.113.9")))

	head := AllowMethods(http.MethodHead)
	assert.True(t, head(ctx(http.MethodHead, "203.0.113.9")))
	assert.False(t, head(ctx(http.MethodGet, "203.0.113.9")))

	either := AllowAny(nil, private, head)
	assert.True(t, either(ctx(http.MethodHead, "203.0.113.9")))
	assert.False(t, either(ctx(http.MethodGet, "203.0.113.9")))
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit(nil, Limit{Name: "t", Max: 1, Window: time.Minute, Key: KeyByIP()}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestKeyByIPAndPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics/:scope", func(c *gin.Context) {
		c.Set(CtxRealIPKey, "10.0.0.7")
		c.String(http.StatusOK, KeyByIPAndPath()(c))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/a", nil))
	assert.Equal(t, "path:/metrics/:scope:ip:10.0.0.7", rec.Body.String())
}
