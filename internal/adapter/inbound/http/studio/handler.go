// Package studiohttp exposes the generation tools over the JSON and
// multipart HTTP API consumed by the studio pages.
package studiohttp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/domain/studio"
	"github.com/imagestudio/server/internal/imaging"
	"github.com/imagestudio/server/internal/infra/events"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/middleware"
)

// Handler handles generation HTTP requests.
type Handler struct {
	invoker studio.Invoker
	bus     *events.Bus
	log     *logger.Logger
}

// NewHandler creates a new studio handler.
func NewHandler(invoker studio.Invoker, bus *events.Bus, log *logger.Logger) *Handler {
	return &Handler{invoker: invoker, bus: bus, log: log}
}

// RegisterRoutes registers the studio routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	group := r.Group("/studio")
	group.Use(mw...)
	{
		group.GET("/sizes", h.Sizes)

		group.POST("/text-to-image", h.TextToImage)
		group.POST("/conditioned-image", h.ConditionedImage)
		group.POST("/background-removal", h.BackgroundRemoval)
		group.POST("/inpainting", h.Inpainting)
		group.POST("/outpainting", h.Outpainting)
	}
}

// Sizes lists the output sizes the generation endpoints accept.
func (h *Handler) Sizes(c *gin.Context) {
	sizes := make([]sizeResponse, 0, len(studio.SupportedSizes))
	for _, s := range studio.SupportedSizes {
		sizes = append(sizes, sizeResponse{
			Width:  s.Width,
			Height: s.Height,
			Label:  fmt.Sprintf("%d x %d", s.Width, s.Height),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sizes": sizes})
}

// TextToImage handles plain text-to-image requests.
func (h *Handler) TextToImage(c *gin.Context) {
	var body textToImageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.generate(c, body.toDomain())
}

// ConditionedImage handles text-to-image requests conditioned on an
// uploaded reference image.
func (h *Handler) ConditionedImage(c *gin.Context) {
	image, err := formFile(c, "image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}

	req := &studio.Request{
		Kind:            studio.TaskConditionedImage,
		Prompt:          c.PostForm("prompt"),
		NegativePrompt:  c.PostForm("negative_prompt"),
		Count:           formInt(c, "count", 0),
		Width:           formInt(c, "width", 0),
		Height:          formInt(c, "height", 0),
		CFGScale:        formFloat(c, "cfg_scale", 0),
		Seed:            formInt64(c, "seed", 0),
		Quality:         studio.Quality(c.PostForm("quality")),
		Image:           image,
		ControlMode:     controlMode(c),
		ControlStrength: formFloat(c, "control_strength", 0.7),
	}
	applyDefaults(req)
	h.generate(c, req)
}

// BackgroundRemoval handles background removal requests.
func (h *Handler) BackgroundRemoval(c *gin.Context) {
	image, err := formFile(c, "image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}

	h.generate(c, &studio.Request{
		Kind:  studio.TaskBackgroundRemoval,
		Image: image,
	})
}

// Inpainting handles inpainting requests. The uploaded source and mask
// are scaled down to the editing bound and the mask is binarized before
// the request reaches the model.
func (h *Handler) Inpainting(c *gin.Context) {
	image, err := formFile(c, "image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	mask, err := formFile(c, "mask")
	if err != nil {
		badRequest(c, "mask file is required")
		return
	}

	image, _, _, err = imaging.FitWithin(image, studio.MaxEditSide)
	if err != nil {
		h.handleError(c, err)
		return
	}
	mask, _, _, err = imaging.FitWithin(mask, studio.MaxEditSide)
	if err != nil {
		h.handleError(c, err)
		return
	}
	mask, err = imaging.BinarizeMask(mask)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req := &studio.Request{
		Kind:   studio.TaskInpainting,
		Prompt: c.PostForm("prompt"),
		Count:  formInt(c, "count", 0),
		Seed:   formInt64(c, "seed", 0),
		Image:  image,
		Mask:   mask,
	}
	applyDefaults(req)
	h.generate(c, req)
}

// Outpainting handles outpainting requests. The uploaded image is placed
// on a larger canvas at the requested position; the region it covers is
// preserved either by a derived mask or by the caller's mask prompt.
func (h *Handler) Outpainting(c *gin.Context) {
	image, err := formFile(c, "image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}

	targetW := formInt(c, "target_width", 1024)
	targetH := formInt(c, "target_height", 1024)
	if !outpaintSizeSupported(targetW, targetH) {
		h.handleError(c, &studio.ValidationError{
			Field:  "target_width",
			Reason: fmt.Sprintf("unsupported outpaint canvas %dx%d", targetW, targetH),
		})
		return
	}

	hPos := formFloat(c, "h_pos", 0.5)
	vPos := formFloat(c, "v_pos", 0.5)
	canvas, mask, err := imaging.Expand(image, targetW, targetH, hPos, vPos)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req := &studio.Request{
		Kind:         studio.TaskOutpainting,
		Prompt:       c.PostForm("prompt"),
		Count:        formInt(c, "count", 0),
		Seed:         formInt64(c, "seed", 0),
		Image:        canvas,
		OutpaintMode: studio.OutpaintMode(c.PostForm("outpaint_mode")),
	}
	if maskPrompt := c.PostForm("mask_prompt"); maskPrompt != "" {
		req.MaskPrompt = maskPrompt
	} else {
		req.Mask = mask
	}
	applyDefaults(req)
	h.generate(c, req)
}

// generate runs one model invocation and writes the response. Every tool
// endpoint funnels through here so the outcome events stay uniform.
func (h *Handler) generate(c *gin.Context, req *studio.Request) {
	start := time.Now()
	result, err := h.invoker.Generate(c.Request.Context(), req)
	duration := time.Since(start)

	user := c.GetString(middleware.UserKey)
	if err != nil {
		h.bus.Publish(events.NewGenerationFailed(user, req.Kind.String(), err.Error(), duration))
		h.handleError(c, err)
		return
	}

	h.bus.Publish(events.NewGenerationCompleted(user, req.Kind.String(), result.Count(), duration))
	c.JSON(http.StatusOK, toResponse(result))
}

func controlMode(c *gin.Context) studio.ControlMode {
	if v := c.PostForm("control_mode"); v != "" {
		return studio.ControlMode(v)
	}
	return studio.ControlModeCannyEdge
}

func outpaintSizeSupported(w, h int) bool {
	for _, s := range studio.OutpaintSizes {
		if s.Width == w && s.Height == h {
			return true
		}
	}
	return false
}
