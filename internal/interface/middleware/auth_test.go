package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/response"
)

func authEngine(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(nil, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func TestAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	r := authEngine(jwt)
	token, _, err := jwt.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	refresh, _, err := jwt.GenerateRefreshToken("user-1", "sid-1")
	require.NoError(t, err)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: token})
		assert.Equal(t, http.StatusOK, serve(req).Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := serve(httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing access token")
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		assert.Equal(t, http.StatusUnauthorized, serve(req).Code)
	})

	t.Run("parse failure details stay server side", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := serve(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body response.APIResponse[any]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid access token", body.Message)
		assert.Nil(t, body.Error)
		assert.NotContains(t, rec.Body.String(), `"error"`)
	})
}

func TestKeyByUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(CtxRealIPKey, "203.0.113.9")
	assert.Equal(t, "user:anon:ip:203.0.113.9", KeyByUserID()(c))

	c.Set(CtxUserIDKey, "user-1")
	assert.Equal(t, "user:user-1", KeyByUserID()(c))
	assert.Equal(t, "ip:203.0.113.9", KeyByIP()(c))
}
