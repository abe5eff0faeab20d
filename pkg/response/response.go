// Package response renders the JSON envelope every endpoint returns.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request-id middleware sets.
const RequestIDKey = "request_id"

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](c *gin.Context, status int, ok bool, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(RequestIDKey),
		Success:   ok,
		Message:   message,
	}
}

// Success writes a success envelope and returns it. A zero status means 200.
func Success[T any](c *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := envelope[T](c, status, true, message)
	resp.Data = data
	resp.Meta = meta
	c.JSON(status, resp)
	return resp
}

// Error writes an error envelope and returns it. A zero status means 400.
func Error[T any](c *gin.Context, status int, message string, detail any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := envelope[T](c, status, false, message)
	resp.Error = detail
	c.JSON(status, resp)
	return resp
}

// AbortError writes an error envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, message string, detail any) {
	Error[any](c, status, message, detail)
	c.Abort()
}
