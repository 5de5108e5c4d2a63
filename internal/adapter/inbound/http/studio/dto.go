package studiohttp

import (
	"encoding/base64"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imagestudio/server/internal/domain/studio"
)

// Generation defaults applied when the client omits a knob.
const (
	defaultCount    = 1
	defaultWidth    = 512
	defaultHeight   = 512
	defaultCFGScale = 8.0
)

// textToImageRequest is the JSON body for plain text-to-image.
type textToImageRequest struct {
	Prompt         string  `json:"prompt" binding:"required"`
	NegativePrompt string  `json:"negative_prompt"`
	Count          int     `json:"count"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	CFGScale       float64 `json:"cfg_scale"`
	Seed           int64   `json:"seed"`
	Quality        string  `json:"quality"`
}

func (r *textToImageRequest) toDomain() *studio.Request {
	req := &studio.Request{
		Kind:           studio.TaskTextImage,
		Prompt:         r.Prompt,
		NegativePrompt: r.NegativePrompt,
		Count:          r.Count,
		Width:          r.Width,
		Height:         r.Height,
		CFGScale:       r.CFGScale,
		Seed:           r.Seed,
		Quality:        studio.Quality(r.Quality),
	}
	applyDefaults(req)
	return req
}

// applyDefaults fills the zero-value knobs shared by the generative kinds.
func applyDefaults(req *studio.Request) {
	if req.Count == 0 {
		req.Count = defaultCount
	}
	if req.Width == 0 {
		req.Width = defaultWidth
	}
	if req.Height == 0 {
		req.Height = defaultHeight
	}
	if req.CFGScale == 0 {
		req.CFGScale = defaultCFGScale
	}
}

// imageResponse is one generated image in a generation response.
type imageResponse struct {
	Data   string `json:"data"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// generationResponse is the body for every successful generation.
type generationResponse struct {
	Images       []imageResponse `json:"images"`
	FilterReason string          `json:"filter_reason,omitempty"`
}

func toResponse(result *studio.Result) generationResponse {
	resp := generationResponse{
		Images:       make([]imageResponse, 0, result.Count()),
		FilterReason: result.FilterReason,
	}
	for _, img := range result.Images {
		resp.Images = append(resp.Images, imageResponse{
			Data:   base64.StdEncoding.EncodeToString(img.Data),
			Width:  img.Width,
			Height: img.Height,
		})
	}
	return resp
}

// sizeResponse describes a supported output size for the UI.
type sizeResponse struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// formFile reads a multipart file field fully into memory.
func formFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readAll(header)
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Form value parsers with defaults. Malformed numbers fall back to the
// default so validation reports on the domain bounds, not parse errors.

func formInt(c *gin.Context, field string, def int) int {
	v := c.PostForm(field)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func formInt64(c *gin.Context, field string, def int64) int64 {
	v := c.PostForm(field)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func formFloat(c *gin.Context, field string, def float64) float64 {
	v := c.PostForm(field)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
