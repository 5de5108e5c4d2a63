// Package pages serves the browser front end: an embedded set of HTML
// templates, one page per generation tool, that drive the JSON API.
package pages

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/domain/studio"
)

//go:embed templates/*.html
var templateFS embed.FS

// Tool describes one studio tool for the navigation and welcome page.
type Tool struct {
	Name        string
	Path        string
	Description string
}

// Tools lists the studio tools in display order.
var Tools = []Tool{
	{
		Name:        "Text to Image",
		Path:        "/text-to-image",
		Description: "Generate images from a text prompt, with an optional negative prompt.",
	},
	{
		Name:        "Conditioned Generation",
		Path:        "/conditioned-image",
		Description: "Generate images guided by the layout of a reference image.",
	},
	{
		Name:        "Background Removal",
		Path:        "/background-removal",
		Description: "Cut the subject out of an uploaded image with a transparent background.",
	},
	{
		Name:        "Inpainting",
		Path:        "/inpainting",
		Description: "Repaint a masked region of an image from a text prompt.",
	},
	{
		Name:        "Outpainting",
		Path:        "/outpainting",
		Description: "Extend an image beyond its borders onto a larger canvas.",
	},
}

// Handler renders the studio pages.
type Handler struct {
	authRequired bool
}

// NewHandler creates a page handler.
func NewHandler(authRequired bool) *Handler {
	return &Handler{authRequired: authRequired}
}

// Templates parses the embedded page templates. The engine installs the
// result with SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// RegisterRoutes registers the page routes. The auth middleware guards
// every page except login.
func (h *Handler) RegisterRoutes(r *gin.Engine, pageAuth gin.HandlerFunc) {
	r.GET("/login", h.Login)

	guarded := r.Group("/")
	if pageAuth != nil {
		guarded.Use(pageAuth)
	}
	guarded.GET("/", h.Welcome)
	guarded.GET("/text-to-image", h.TextToImage)
	guarded.GET("/conditioned-image", h.ConditionedImage)
	guarded.GET("/background-removal", h.BackgroundRemoval)
	guarded.GET("/inpainting", h.Inpainting)
	guarded.GET("/outpainting", h.Outpainting)
}

func (h *Handler) render(c *gin.Context, name, title string) {
	c.HTML(http.StatusOK, name, gin.H{
		"Title":        title,
		"Tools":        Tools,
		"Active":       c.Request.URL.Path,
		"AuthRequired": h.authRequired,
		"Sizes":        studio.SupportedSizes,
		"MaxImages":    studio.MaxImages,
		"MaxSeed":      studio.MaxSeed,
	})
}

// Welcome renders the landing page with one card per tool.
func (h *Handler) Welcome(c *gin.Context) {
	h.render(c, "index", "Image Studio")
}

// Login renders the sign-in form.
func (h *Handler) Login(c *gin.Context) {
	h.render(c, "login", "Sign in")
}

// TextToImage renders the text-to-image tool.
func (h *Handler) TextToImage(c *gin.Context) {
	h.render(c, "text_to_image", "Text to Image")
}

// ConditionedImage renders the conditioned generation tool.
func (h *Handler) ConditionedImage(c *gin.Context) {
	h.render(c, "conditioned_image", "Conditioned Generation")
}

// BackgroundRemoval renders the background removal tool.
func (h *Handler) BackgroundRemoval(c *gin.Context) {
	h.render(c, "background_removal", "Background Removal")
}

// Inpainting renders the inpainting tool.
func (h *Handler) Inpainting(c *gin.Context) {
	h.render(c, "inpainting", "Inpainting")
}

// Outpainting renders the outpainting tool.
func (h *Handler) Outpainting(c *gin.Context) {
	h.render(c, "outpainting", "Outpainting")
}
