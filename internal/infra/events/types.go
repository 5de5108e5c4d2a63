package events

import "time"

// Event type names.
const (
	TypeGenerationCompleted = "GenerationCompleted"
	TypeGenerationFailed    = "GenerationFailed"
)

// GenerationCompleted is published after a model invocation returns
// at least one image.
type GenerationCompleted struct {
	BaseEvent

	User     string        `json:"user,omitempty"`
	Task     string        `json:"task"`
	Images   int           `json:"images"`
	Duration time.Duration `json:"duration"`
}

// NewGenerationCompleted creates a GenerationCompleted event.
func NewGenerationCompleted(user, task string, images int, duration time.Duration) *GenerationCompleted {
	return &GenerationCompleted{
		BaseEvent: NewBaseEvent(TypeGenerationCompleted),
		User:      user,
		Task:      task,
		Images:    images,
		Duration:  duration,
	}
}

// GenerationFailed is published when a model invocation errors or every
// requested image is withheld.
type GenerationFailed struct {
	BaseEvent

	User     string        `json:"user,omitempty"`
	Task     string        `json:"task"`
	Reason   string        `json:"reason"`
	Duration time.Duration `json:"duration"`
}

// NewGenerationFailed creates a GenerationFailed event.
func NewGenerationFailed(user, task, reason string, duration time.Duration) *GenerationFailed {
	return &GenerationFailed{
		BaseEvent: NewBaseEvent(TypeGenerationFailed),
		User:      user,
		Task:      task,
		Reason:    reason,
		Duration:  duration,
	}
}
