package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/pkg/response"
	"github.com/oksasatya/go-ddd-social/pkg/validation"
)

type PostHandler struct {
	Feeds         *app.FeedService
	Interactions  *app.InteractionService
	Logger        *logrus.Logger
	MaxImageBytes int
}

func NewPostHandler(feeds *app.FeedService, interactions *app.InteractionService, logger *logrus.Logger, maxImageBytes int) *PostHandler {
	return &PostHandler{Feeds: feeds, Interactions: interactions, Logger: logger, MaxImageBytes: maxImageBytes}
}

type createPostRequest struct {
	Text         string `json:"text" binding:"max=2000"`
	Img          string `json:"img"`
	QuotedPostID string `json:"quoted_post_id"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

func (h *PostHandler) feed(c *gin.Context, posts []app.PostView, err error) {
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", map[string]any{"count": len(posts)})
}

func (h *PostHandler) All(c *gin.Context) {
	posts, err := h.Feeds.GlobalFeed(c.Request.Context())
	h.feed(c, posts, err)
}

func (h *PostHandler) Following(c *gin.Context) {
	posts, err := h.Feeds.FollowingFeed(c.Request.Context(), c.GetString("userID"))
	h.feed(c, posts, err)
}

func (h *PostHandler) Liked(c *gin.Context) {
	posts, err := h.Feeds.LikedFeed(c.Request.Context(), c.Param("id"))
	h.feed(c, posts, err)
}

func (h *PostHandler) ByUser(c *gin.Context) {
	posts, err := h.Feeds.AuthorFeed(c.Request.Context(), c.Param("username"))
	h.feed(c, posts, err)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	img, err := decodeImage(req.Img, h.MaxImageBytes)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	post, err := h.Interactions.CreatePost(c.Request.Context(), c.GetString("userID"), app.CreatePostInput{
		Text:         req.Text,
		Image:        img,
		QuotedPostID: req.QuotedPostID,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, post, "post created", nil)
}

func (h *PostHandler) Like(c *gin.Context) {
	res, err := h.Interactions.ToggleLike(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := "post unliked"
	if res.Liked {
		msg = "post liked"
	}
	response.Success(c, http.StatusOK, res, msg, nil)
}

func (h *PostHandler) Comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "text field is required", validation.ToDetails(err))
		return
	}
	post, err := h.Interactions.AddComment(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, post, "comment added", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.Interactions.DeletePost(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "post deleted successfully", nil)
}
