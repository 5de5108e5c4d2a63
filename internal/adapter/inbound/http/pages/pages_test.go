package pages

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(authRequired bool, pageAuth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(Templates())
	NewHandler(authRequired).RegisterRoutes(r, pageAuth)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPagesRender(t *testing.T) {
	r := newRouter(false, nil)

	paths := []string{"/", "/login"}
	for _, tool := range Tools {
		paths = append(paths, tool.Path)
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := get(r, path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "Image Studio")
		})
	}
}

func TestWelcomeListsEveryTool(t *testing.T) {
	r := newRouter(false, nil)

	body := get(r, "/").Body.String()
	for _, tool := range Tools {
		assert.Contains(t, body, tool.Name)
		assert.Contains(t, body, tool.Path)
	}
}

func TestInpaintingMaskContract(t *testing.T) {
	body := get(newRouter(false, nil), "/inpainting").Body.String()

	// Strokes are opaque black on a cleared canvas, so the server-side
	// binarization turns the painted region into the black edit region.
	assert.Contains(t, body, "maskCtx.clearRect")
	assert.Contains(t, body, `maskCtx.fillStyle = "black"`)
	assert.NotContains(t, body, `maskCtx.fillStyle = "white"`)

	// Edits are submitted at the full editing resolution, not at the
	// smaller display scale the canvas is drawn at.
	assert.Contains(t, body, "const maxSide = 1024")
	assert.Contains(t, body, "rescale(baseImage, submitW, submitH)")
	assert.Contains(t, body, "rescale(mask, submitW, submitH)")
}

func TestOutpaintingFormCarriesSeed(t *testing.T) {
	body := get(newRouter(false, nil), "/outpainting").Body.String()
	assert.Contains(t, body, `name="seed"`)
}

func TestPageAuthGuardsToolsNotLogin(t *testing.T) {
	redirect := func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
	r := newRouter(true, redirect)

	for _, tool := range Tools {
		w := get(r, tool.Path)
		assert.Equal(t, http.StatusFound, w.Code, tool.Path)
	}

	w := get(r, "/login")
	assert.Equal(t, http.StatusOK, w.Code)
}
