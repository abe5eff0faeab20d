package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/infrastructure/media"
	"github.com/oksasatya/go-ddd-social/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-social/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
	"github.com/oksasatya/go-ddd-social/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	users  *app.UserService
}

func newServer(t *testing.T) *server {
	t.Helper()
	userRepo := memory.NewUserRepository()
	postRepo := memory.NewPostRepository()
	notifRepo := memory.NewNotificationRepository()
	store := media.NewMemoryStore("")
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)

	users := app.NewUserService(userRepo, jwt, nil, store, nil, nil, nil, nil)
	graph := app.NewGraphService(userRepo, notifRepo, nil)
	interactions := app.NewInteractionService(userRepo, postRepo, notifRepo, store, nil)
	feeds := app.NewFeedService(userRepo, postRepo, nil)
	inbox := app.NewNotificationService(notifRepo, userRepo, nil)

	authH := NewAuthHandler(users, nil, "", false)
	userH := NewUserHandler(users, graph, nil, 1<<20)
	postH := NewPostHandler(feeds, interactions, nil, 1<<20)
	notifH := NewNotificationHandler(inbox, nil)

	r := gin.New()
	api := r.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/signup", authH.Signup)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)

	protected := api.Group("", middleware.Auth(nil, jwt))
	protected.GET("/auth/me", authH.Me)
	protected.POST("/auth/logout", authH.Logout)
	protected.GET("/users/profile/:username", userH.GetProfile)
	protected.GET("/users/suggested", userH.Suggested)
	protected.POST("/users/follow/:id", userH.Follow)
	protected.POST("/users/update", userH.UpdateProfile)
	protected.GET("/posts/all", postH.All)
	protected.GET("/posts/following", postH.Following)
	protected.GET("/posts/likes/:id", postH.Liked)
	protected.GET("/posts/user/:username", postH.ByUser)
	protected.POST("/posts/create", postH.Create)
	protected.POST("/posts/like/:id", postH.Like)
	protected.POST("/posts/comment/:id", postH.Comment)
	protected.DELETE("/posts/:id", postH.Delete)
	protected.GET("/notifications", notifH.List)
	protected.DELETE("/notifications", notifH.Clear)

	return &server{t: t, engine: r, users: users}
}

func (s *server) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

// signup creates an account and returns its id and access token.
func (s *server) signup(username string) (string, string) {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "User " + username,
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret1",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var v app.UserView
	require.NoError(s.t, json.Unmarshal(env.Data, &v))

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == helpers.AccessCookie {
			token = c.Value
		}
	}
	require.NotEmpty(s.t, token)
	return v.ID, token
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	id, token := s.signup("alice")

	rec, _ := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": "Again", "username": "alice", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Error), "full_name")

	rec, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, id, me["id"])
	assert.NotContains(t, me, "password")

	rec, _ = s.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFollowAndNotifications(t *testing.T) {
	s := newServer(t)
	aliceID, aliceTok := s.signup("alice")
	_, bobTok := s.signup("bob")

	rec, env := s.do(http.MethodPost, "/api/users/follow/"+aliceID, bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User followed successfully", env.Message)

	rec, _ = s.do(http.MethodPost, "/api/users/follow/"+aliceID, aliceTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(http.MethodPost, "/api/users/follow/missing", bobTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/users/profile/alice", bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile app.UserView
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Len(t, profile.Followers, 1)

	rec, env = s.do(http.MethodGet, "/api/notifications", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []app.NotificationView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "follow", list[0].Type)
	assert.Equal(t, "bob", list[0].From.Username)
	assert.False(t, list[0].Read)

	rec, env = s.do(http.MethodDelete, "/api/notifications", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, string(env.Data))
}

func TestPostLifecycle(t *testing.T) {
	s := newServer(t)
	_, aliceTok := s.signup("alice")
	_, bobTok := s.signup("bob")

	rec, _ := s.do(http.MethodPost, "/api/posts/create", aliceTok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.do(http.MethodPost, "/api/posts/create", aliceTok, map[string]string{
		"text": "hello",
		"img":  dataURI("image/png", pngHeader),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post app.PostView
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.NotEmpty(t, post.Img)
	assert.Equal(t, "alice", post.User.Username)

	rec, env = s.do(http.MethodPost, "/api/posts/like/"+post.ID, bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post liked", env.Message)

	rec, _ = s.do(http.MethodPost, "/api/posts/comment/"+post.ID, bobTok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, env = s.do(http.MethodPost, "/api/posts/comment/"+post.ID, bobTok, map[string]string{"text": "nice"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &post))
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "bob", post.Comments[0].User.Username)

	for _, path := range []string{"/api/posts/all", "/api/posts/user/alice"} {
		rec, env = s.do(http.MethodGet, path, bobTok, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var feed []app.PostView
		require.NoError(t, json.Unmarshal(env.Data, &feed))
		assert.Len(t, feed, 1, path)
	}

	rec, _ = s.do(http.MethodDelete, "/api/posts/"+post.ID, bobTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodDelete, "/api/posts/"+post.ID, aliceTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodPost, "/api/posts/like/"+post.ID, bobTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
