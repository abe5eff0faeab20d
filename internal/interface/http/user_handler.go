package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/pkg/response"
	"github.com/oksasatya/go-ddd-social/pkg/validation"
)

type UserHandler struct {
	Users         *app.UserService
	Graph         *app.GraphService
	Logger        *logrus.Logger
	MaxImageBytes int
}

func NewUserHandler(users *app.UserService, graph *app.GraphService, logger *logrus.Logger, maxImageBytes int) *UserHandler {
	return &UserHandler{Users: users, Graph: graph, Logger: logger, MaxImageBytes: maxImageBytes}
}

type updateProfileRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Username        string `json:"username" binding:"omitempty,handle"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,pwd"`
	Bio             string `json:"bio" binding:"max=160"`
	Link            string `json:"link" binding:"omitempty,url"`
	ProfileImg      string `json:"profile_img"`
	CoverImg        string `json:"cover_img"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	v, err := h.Users.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "profile", nil)
}

func (h *UserHandler) Suggested(c *gin.Context) {
	list, err := h.Graph.SuggestUsers(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "suggested users", nil)
}

func (h *UserHandler) Follow(c *gin.Context) {
	res, err := h.Graph.FollowOrUnfollow(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, res.Message, nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	profileImg, err := decodeImage(req.ProfileImg, h.MaxImageBytes)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	coverImg, err := decodeImage(req.CoverImg, h.MaxImageBytes)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	v, err := h.Users.UpdateProfile(c.Request.Context(), c.GetString("userID"), app.UpdateProfileInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Username:        req.Username,
		Bio:             req.Bio,
		Link:            req.Link,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfileImg:      profileImg,
		CoverImg:        coverImg,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "profile updated", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := h.Users.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "ok", map[string]any{"count": len(res)})
}
