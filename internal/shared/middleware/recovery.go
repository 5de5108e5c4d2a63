// Package middleware holds the gin middleware chain: panic recovery,
// request IDs, request logging, CORS, metrics, auth and rate limiting.
package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/shared/errors"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/response"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					logger.Any("panic", err),
					logger.String("path", c.Request.URL.Path),
					logger.String("stack", string(debug.Stack())),
				)
				e := errors.Internal("internal server error", nil)
				c.AbortWithStatusJSON(e.StatusCode, response.ErrorResponse{Error: e.Message, Code: e.Code})
			}
		}()
		c.Next()
	}
}
