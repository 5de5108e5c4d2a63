package authhttp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imagestudio/server/internal/adapter/outbound/token"
	"github.com/imagestudio/server/internal/shared/config"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/middleware"
)

func newRouter(t *testing.T) (*gin.Engine, *token.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := token.NewManager("test-secret", time.Hour)
	h := NewHandler(
		[]config.UserConfig{{Username: "alice", PasswordHash: string(hash)}},
		tokens,
		logger.New(&logger.Config{Level: "error", Output: io.Discard}),
	)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, tokens
}

func postLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"username": username, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		r, tokens := newRouter(t)

		w := postLogin(t, r, "alice", "hunter2")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		user, err := tokens.Validate(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user)

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		var found bool
		for _, c := range cookies {
			if c.Name == middleware.TokenCookie {
				found = true
				assert.Equal(t, resp.Token, c.Value)
				assert.True(t, c.HttpOnly)
			}
		}
		assert.True(t, found)
	})

	t.Run("wrong password", func(t *testing.T) {
		r, _ := newRouter(t)
		w := postLogin(t, r, "alice", "wrong")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		r, _ := newRouter(t)
		w := postLogin(t, r, "mallory", "hunter2")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		r, _ := newRouter(t)
		w := postLogin(t, r, "alice", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogout(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			cleared = true
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
	assert.True(t, cleared)
}
