package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUserNameKey = "userName"
)

func accessToken(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil && tok != "" {
		return tok
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Auth validates the access token and, when Redis is configured, requires the
// session it was issued for to still be live. It sets userID and userName in
// the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		if rdb != nil {
			data, err := helpers.LoadSession(c.Request.Context(), rdb, helpers.SessionKey(claims.UserID))
			if err != nil || data["sid"] != claims.SessionID {
				response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			c.Set(CtxUserNameKey, data["username"])
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
