// Package response provides gin JSON response helpers.
package response

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/shared/errors"
)

// ErrorResponse represents a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error sends an error response with the given status code.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// ErrorWithCode sends an error response with an error code.
func ErrorWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// BadRequest sends a 400 Bad Request response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "unauthorized"
	}
	Error(c, http.StatusUnauthorized, message)
}

// InternalError sends a 500 Internal Server Error response.
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal error"
	}
	Error(c, http.StatusInternalServerError, message)
}

// FromError sends the response appropriate for an application error,
// falling back through the given mappings for plain sentinel errors.
func FromError(c *gin.Context, err error, mappings []ErrorMapping) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		ErrorWithCode(c, appErr.StatusCode, appErr.Code, appErr.Message)
		return
	}
	for _, m := range mappings {
		if stderrors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = m.Err.Error()
			}
			ErrorWithCode(c, m.Status, m.Code, msg)
			return
		}
	}

	// Unmapped shared sentinels keep their status; anything else is a 500
	// with the detail withheld.
	if status := errors.GetStatusCode(err); status != http.StatusInternalServerError {
		Error(c, status, err.Error())
		return
	}
	InternalError(c, "")
}

// ErrorMapping maps domain errors to HTTP status codes.
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}
