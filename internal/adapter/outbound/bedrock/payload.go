package bedrock

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imagestudio/server/internal/domain/studio"
)

// Wire task type identifiers understood by the Nova Canvas endpoint.
const (
	wireTaskTextImage         = "TEXT_IMAGE"
	wireTaskBackgroundRemoval = "BACKGROUND_REMOVAL"
	wireTaskInpainting        = "INPAINTING"
	wireTaskOutpainting       = "OUTPAINTING"
)

// invokeBody is the top-level request payload. Exactly one of the params
// blocks is set, selected by TaskType.
type invokeBody struct {
	TaskType                string                   `json:"taskType"`
	TextToImageParams       *textToImageParams       `json:"textToImageParams,omitempty"`
	BackgroundRemovalParams *backgroundRemovalParams `json:"backgroundRemovalParams,omitempty"`
	InPaintingParams        *inPaintingParams        `json:"inPaintingParams,omitempty"`
	OutPaintingParams       *outPaintingParams       `json:"outPaintingParams,omitempty"`
	ImageGenerationConfig   *imageGenerationConfig   `json:"imageGenerationConfig,omitempty"`
}

type textToImageParams struct {
	Text            string  `json:"text"`
	NegativeText    string  `json:"negativeText,omitempty"`
	ConditionImage  string  `json:"conditionImage,omitempty"`
	ControlMode     string  `json:"controlMode,omitempty"`
	ControlStrength float64 `json:"controlStrength,omitempty"`
}

type backgroundRemovalParams struct {
	Image string `json:"image"`
}

type inPaintingParams struct {
	Text      string `json:"text"`
	Image     string `json:"image"`
	MaskImage string `json:"maskImage"`
}

type outPaintingParams struct {
	Text            string `json:"text"`
	Image           string `json:"image"`
	MaskImage       string `json:"maskImage,omitempty"`
	MaskPrompt      string `json:"maskPrompt,omitempty"`
	OutPaintingMode string `json:"outPaintingMode"`
}

type imageGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	CFGScale       float64 `json:"cfgScale,omitempty"`
	Seed           int64   `json:"seed"`
}

// BuildPayload shapes the endpoint request body for a validated domain
// request. Image bytes are base64-encoded here; empty optional fields are
// omitted from the wire form.
func BuildPayload(req *studio.Request) ([]byte, error) {
	body := invokeBody{}

	switch req.Kind {
	case studio.TaskTextImage:
		body.TaskType = wireTaskTextImage
		body.TextToImageParams = &textToImageParams{
			Text:         req.Prompt,
			NegativeText: strings.TrimSpace(req.NegativePrompt),
		}
		body.ImageGenerationConfig = fullConfig(req)

	case studio.TaskConditionedImage:
		body.TaskType = wireTaskTextImage
		body.TextToImageParams = &textToImageParams{
			Text:            req.Prompt,
			NegativeText:    strings.TrimSpace(req.NegativePrompt),
			ConditionImage:  encode(req.Image),
			ControlMode:     string(req.ControlMode),
			ControlStrength: req.ControlStrength,
		}
		body.ImageGenerationConfig = fullConfig(req)

	case studio.TaskBackgroundRemoval:
		body.TaskType = wireTaskBackgroundRemoval
		body.BackgroundRemovalParams = &backgroundRemovalParams{
			Image: encode(req.Image),
		}

	case studio.TaskInpainting:
		body.TaskType = wireTaskInpainting
		body.InPaintingParams = &inPaintingParams{
			Text:      req.Prompt,
			Image:     encode(req.Image),
			MaskImage: encode(req.Mask),
		}
		body.ImageGenerationConfig = editConfig(req)

	case studio.TaskOutpainting:
		body.TaskType = wireTaskOutpainting
		params := &outPaintingParams{
			Text:            req.Prompt,
			Image:           encode(req.Image),
			OutPaintingMode: string(outpaintMode(req)),
		}
		if len(req.Mask) > 0 {
			params.MaskImage = encode(req.Mask)
		} else {
			params.MaskPrompt = strings.TrimSpace(req.MaskPrompt)
		}
		body.OutPaintingParams = params
		body.ImageGenerationConfig = editConfig(req)

	default:
		return nil, fmt.Errorf("build payload: %w: %s", studio.ErrUnknownTask, req.Kind)
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("build payload: marshal: %w", err)
	}
	return out, nil
}

// fullConfig carries the complete knob set for the text-to-image kinds.
func fullConfig(req *studio.Request) *imageGenerationConfig {
	return &imageGenerationConfig{
		NumberOfImages: req.Count,
		Quality:        string(quality(req)),
		Width:          req.Width,
		Height:         req.Height,
		CFGScale:       req.CFGScale,
		Seed:           req.Seed,
	}
}

// editConfig carries the reduced knob set for the editing kinds, where
// the source image dictates the output dimensions.
func editConfig(req *studio.Request) *imageGenerationConfig {
	return &imageGenerationConfig{
		NumberOfImages: req.Count,
		Seed:           req.Seed,
	}
}

func quality(req *studio.Request) studio.Quality {
	if req.Quality == "" {
		return studio.QualityStandard
	}
	return req.Quality
}

func outpaintMode(req *studio.Request) studio.OutpaintMode {
	if req.OutpaintMode == "" {
		return studio.OutpaintModePrecise
	}
	return req.OutpaintMode
}

func encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
