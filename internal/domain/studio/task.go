// Package studio contains the domain model for the image studio:
// the per-call generation request and result value objects, the task
// kinds the hosted model supports, and all local validation that must
// pass before a request is allowed to reach the remote endpoint.
package studio

// TaskKind identifies one of the supported generation variants.
type TaskKind string

const (
	TaskTextImage         TaskKind = "text_image"
	TaskConditionedImage  TaskKind = "conditioned_image"
	TaskBackgroundRemoval TaskKind = "background_removal"
	TaskInpainting        TaskKind = "inpainting"
	TaskOutpainting       TaskKind = "outpainting"
)

// String returns the string representation of the task kind.
func (k TaskKind) String() string {
	return string(k)
}

// IsValid checks if the task kind is one of the supported variants.
func (k TaskKind) IsValid() bool {
	switch k {
	case TaskTextImage, TaskConditionedImage, TaskBackgroundRemoval,
		TaskInpainting, TaskOutpainting:
		return true
	default:
		return false
	}
}

// Generative returns whether the kind produces images from a text prompt.
// Background removal is the only non-generative kind.
func (k TaskKind) Generative() bool {
	return k != TaskBackgroundRemoval
}

// NeedsSourceImage returns whether the kind requires an uploaded image.
func (k TaskKind) NeedsSourceImage() bool {
	switch k {
	case TaskConditionedImage, TaskBackgroundRemoval, TaskInpainting, TaskOutpainting:
		return true
	default:
		return false
	}
}

// ControlMode selects how a reference image conditions the generation.
type ControlMode string

const (
	ControlModeCannyEdge    ControlMode = "CANNY_EDGE"
	ControlModeSegmentation ControlMode = "SEGMENTATION"
)

// IsValid checks if the control mode is supported.
func (m ControlMode) IsValid() bool {
	switch m {
	case ControlModeCannyEdge, ControlModeSegmentation:
		return true
	default:
		return false
	}
}

// Quality selects the generation quality tier.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityPremium  Quality = "premium"
)

// IsValid checks if the quality tier is supported.
func (q Quality) IsValid() bool {
	switch q {
	case QualityStandard, QualityPremium:
		return true
	default:
		return false
	}
}

// OutpaintMode selects how strictly the preserved region is kept.
type OutpaintMode string

const (
	OutpaintModeDefault OutpaintMode = "DEFAULT"
	OutpaintModePrecise OutpaintMode = "PRECISE"
)
