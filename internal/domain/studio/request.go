package studio

import (
	"bytes"
	"image"
	"strings"

	_ "image/jpeg" // register decoders for upload probing
	_ "image/png"
)

// Parameter bounds enforced before any remote call is made. They mirror
// what the Nova Canvas endpoint accepts so violations fail locally.
const (
	MinImages = 1
	MaxImages = 5

	MinCFGScale = 1.0
	MaxCFGScale = 10.0

	MinSeed = 0
	MaxSeed = 858993459

	// Uploaded images must fall within these per-side bounds.
	MinSide = 320
	MaxSide = 4096

	// Inpainting sources larger than this are downscaled by the page
	// controller before they reach the domain.
	MaxEditSide = 1024
)

// Size is a supported output dimension pair.
type Size struct {
	Width  int
	Height int
}

// SupportedSizes lists the output sizes the endpoint accepts for
// text-to-image and conditioned generation.
var SupportedSizes = []Size{
	{384, 576},
	{384, 640},
	{448, 576},
	{512, 512},
	{576, 384},
	{768, 768},
	{768, 1152},
	{1024, 1024},
}

// OutpaintSizes lists the target canvas sizes for outpainting.
var OutpaintSizes = []Size{
	{512, 512},
	{1024, 1024},
}

// SizeSupported reports whether w x h is a supported output size.
func SizeSupported(w, h int) bool {
	for _, s := range SupportedSizes {
		if s.Width == w && s.Height == h {
			return true
		}
	}
	return false
}

// Request is the ephemeral value object for a single generation call.
// It is created fresh per user action, validated, handed to the Invoker
// and discarded once the result is rendered.
type Request struct {
	Kind TaskKind

	// Prompt text. Required for every generative kind.
	Prompt         string
	NegativePrompt string

	// Output configuration. Width/Height are ignored for background
	// removal and for the editing kinds, where the source dictates them.
	Count    int
	Width    int
	Height   int
	CFGScale float64
	Seed     int64
	Quality  Quality

	// Source image bytes (PNG or JPEG) for image-conditioned kinds.
	Image []byte

	// Mask image bytes for inpainting and image-masked outpainting.
	Mask []byte

	// MaskPrompt textually selects the region to preserve during
	// outpainting. Mutually exclusive with Mask.
	MaskPrompt string

	// Conditioning controls, conditioned generation only.
	ControlMode     ControlMode
	ControlStrength float64

	// OutpaintMode, outpainting only. Defaults to PRECISE.
	OutpaintMode OutpaintMode
}

// Validate checks every local precondition for the request's kind.
// A request that fails validation must never reach the remote endpoint.
func (r *Request) Validate() error {
	if !r.Kind.IsValid() {
		return ErrUnknownTask
	}

	if r.Kind.Generative() && strings.TrimSpace(r.Prompt) == "" {
		return invalid("prompt", "prompt is required")
	}

	if err := r.validateConfig(); err != nil {
		return err
	}

	if r.Kind.NeedsSourceImage() {
		if len(r.Image) == 0 {
			return invalid("image", "source image is required")
		}
		if err := r.validateUpload("image", r.Image); err != nil {
			return err
		}
	}

	switch r.Kind {
	case TaskTextImage, TaskConditionedImage:
		if !SizeSupported(r.Width, r.Height) {
			return invalid("size", "unsupported output size %dx%d", r.Width, r.Height)
		}
	}

	switch r.Kind {
	case TaskConditionedImage:
		if !r.ControlMode.IsValid() {
			return invalid("control_mode", "unsupported control mode %q", r.ControlMode)
		}
		if r.ControlStrength < 0 || r.ControlStrength > 1 {
			return invalid("control_strength", "must be between 0.0 and 1.0")
		}
	case TaskInpainting:
		if len(r.Mask) == 0 {
			return invalid("mask", "mask image is required")
		}
		if err := r.validateMaskMatches(); err != nil {
			return err
		}
	case TaskOutpainting:
		hasMask := len(r.Mask) > 0
		hasMaskPrompt := strings.TrimSpace(r.MaskPrompt) != ""
		if hasMask == hasMaskPrompt {
			return invalid("mask", "exactly one of mask image or mask prompt is required")
		}
		if hasMask {
			if err := r.validateMaskMatches(); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateConfig checks the numeric knobs shared by the generative kinds.
func (r *Request) validateConfig() error {
	if !r.Kind.Generative() {
		return nil
	}
	if r.Count < MinImages || r.Count > MaxImages {
		return invalid("count", "must be between %d and %d", MinImages, MaxImages)
	}
	if r.Seed < MinSeed || r.Seed > MaxSeed {
		return invalid("seed", "must be between %d and %d", MinSeed, MaxSeed)
	}
	// cfgScale only applies to kinds that expose it.
	switch r.Kind {
	case TaskTextImage, TaskConditionedImage:
		if r.CFGScale < MinCFGScale || r.CFGScale > MaxCFGScale {
			return invalid("cfg_scale", "must be between %.1f and %.1f", MinCFGScale, MaxCFGScale)
		}
	}
	if r.Quality != "" && !r.Quality.IsValid() {
		return invalid("quality", "unsupported quality tier %q", r.Quality)
	}
	return nil
}

// validateUpload checks that an uploaded image decodes and each side is
// within the endpoint's accepted bounds.
func (r *Request) validateUpload(field string, data []byte) error {
	w, h, err := probeDims(data)
	if err != nil {
		return invalid(field, "not a valid PNG or JPEG image")
	}
	if w < MinSide || h < MinSide || w > MaxSide || h > MaxSide {
		return invalid(field, "each side must be between %d and %d pixels, got %dx%d",
			MinSide, MaxSide, w, h)
	}
	return nil
}

// validateMaskMatches checks that the mask decodes and matches the source
// image dimensions exactly.
func (r *Request) validateMaskMatches() error {
	iw, ih, err := probeDims(r.Image)
	if err != nil {
		return invalid("image", "not a valid PNG or JPEG image")
	}
	mw, mh, err := probeDims(r.Mask)
	if err != nil {
		return invalid("mask", "not a valid PNG or JPEG image")
	}
	if iw != mw || ih != mh {
		return invalid("mask", "mask size %dx%d does not match image size %dx%d",
			mw, mh, iw, ih)
	}
	return nil
}

func probeDims(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
