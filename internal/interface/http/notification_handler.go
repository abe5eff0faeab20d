package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/pkg/response"
)

type NotificationHandler struct {
	Svc    *app.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *app.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

// List returns the inbox and marks it read.
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.Svc.ListAndMarkRead(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "notifications", map[string]any{"count": len(list)})
}

func (h *NotificationHandler) Clear(c *gin.Context) {
	n, err := h.Svc.ClearAll(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": n}, "notifications deleted successfully", nil)
}
