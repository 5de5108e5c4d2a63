package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/shared/errors"
	"github.com/imagestudio/server/internal/shared/response"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// TokenCookie is the session cookie holding the auth token.
	TokenCookie = "studio_token"
	// UserKey is the context key for the authenticated username.
	UserKey = "user"
)

// TokenValidator validates an auth token and returns the username it
// was issued to.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth returns a middleware that rejects unauthenticated API requests
// with a 401.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c, validator)
		if !ok {
			e := errors.Unauthorized("")
			c.AbortWithStatusJSON(e.StatusCode, response.ErrorResponse{Error: e.Message, Code: e.Code})
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// PageAuth returns a middleware that redirects unauthenticated page
// requests to the login page.
func PageAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c, validator)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

func authenticate(c *gin.Context, validator TokenValidator) (string, bool) {
	token := extractToken(c)
	if token == "" {
		return "", false
	}
	user, err := validator.Validate(token)
	if err != nil {
		return "", false
	}
	return user, true
}

// extractToken prefers the session cookie and falls back to a bearer
// header for API clients.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimPrefix(header, BearerPrefix)
	}
	return ""
}
