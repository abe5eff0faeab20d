package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/pkg/response"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrSelfReference):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrMediaStore):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Store and unknown failures are logged and hidden from the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	msg := errs.Message(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			response.RequestIDKey: c.GetString(response.RequestIDKey),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	switch {
	case status == http.StatusInternalServerError:
		msg = "internal server error"
	case msg == "":
		msg = http.StatusText(status)
	}
	response.Error[any](c, status, msg, nil)
}
