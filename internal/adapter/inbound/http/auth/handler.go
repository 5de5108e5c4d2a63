// Package authhttp handles browser sign-in against the configured user
// list, issuing the session cookie the other routes require.
package authhttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/imagestudio/server/internal/adapter/outbound/token"
	"github.com/imagestudio/server/internal/shared/config"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/middleware"
	"github.com/imagestudio/server/internal/shared/response"
)

// Handler handles login and logout requests.
type Handler struct {
	users  map[string]string
	tokens *token.Manager
	log    *logger.Logger
}

// NewHandler creates an auth handler for the configured users. Passwords
// are stored as bcrypt hashes in the configuration, never in clear text.
func NewHandler(users []config.UserConfig, tokens *token.Manager, log *logger.Logger) *Handler {
	byName := make(map[string]string, len(users))
	for _, u := range users {
		byName[u.Username] = u.PasswordHash
	}
	return &Handler{users: byName, tokens: tokens, log: log}
}

// RegisterRoutes registers the auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/logout", h.Logout)
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the credentials and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	hash, ok := h.users[body.Username]
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		h.log.WarnContext(c.Request.Context(), "failed login attempt",
			logger.String("username", body.Username),
		)
		response.Unauthorized(c, "invalid username or password")
		return
	}

	tok, expiresAt, err := h.tokens.Issue(body.Username)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, tok, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, loginResponse{Token: tok, ExpiresAt: expiresAt})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
