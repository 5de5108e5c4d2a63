package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/shared/errors"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/response"
)

// RateLimiter is the port to a sliding-window limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit returns a middleware that bounds generation calls per client
// IP. A nil limiter disables limiting; a limiter failure lets the
// request through rather than blocking the studio on Redis.
func RateLimit(limiter RateLimiter, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		if user := c.GetString(UserKey); user != "" {
			key = user
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Warn("rate limiter unavailable", logger.Err(err))
			c.Next()
			return
		}
		if !allowed {
			e := errors.RateLimited("too many requests, slow down")
			c.AbortWithStatusJSON(e.StatusCode, response.ErrorResponse{Error: e.Message, Code: e.Code})
			return
		}

		c.Next()
	}
}
