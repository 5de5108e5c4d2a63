package events

import "go.uber.org/zap"

// AuditHandler writes one structured log line per generation outcome.
// It is the durable usage trail for the studio.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an audit handler writing to the given logger.
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("audit")}
}

// Handles returns the event types the audit trail records.
func (h *AuditHandler) Handles() []string {
	return []string{TypeGenerationCompleted, TypeGenerationFailed}
}

// Handle writes the audit entry for the event.
func (h *AuditHandler) Handle(event Event) error {
	switch e := event.(type) {
	case *GenerationCompleted:
		h.logger.Info("generation completed",
			zap.String("event_id", e.EventID().String()),
			zap.String("user", e.User),
			zap.String("task", e.Task),
			zap.Int("images", e.Images),
			zap.Duration("duration", e.Duration),
		)
	case *GenerationFailed:
		h.logger.Warn("generation failed",
			zap.String("event_id", e.EventID().String()),
			zap.String("user", e.User),
			zap.String("task", e.Task),
			zap.String("reason", e.Reason),
			zap.Duration("duration", e.Duration),
		)
	}
	return nil
}
