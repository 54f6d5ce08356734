package event

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes every published domain event to the structured log
// as a serialized JSON payload. FSMA record-keeping expects traceability
// actions to leave an auditable trail, so this handler subscribes as a
// wildcard and never filters.
type AuditLogHandler struct {
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewAuditLogHandler creates an audit log handler
func NewAuditLogHandler(serializer *EventSerializer, logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		serializer: serializer,
		logger:     logger,
	}
}

// EventTypes returns an empty slice; the handler receives all events.
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle serializes the event and logs it. Serialization failures are
// reported as errors but only unregistered types cause them; a registered
// event that cannot marshal indicates a programming bug.
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return err
	}

	h.logger.Info("domain event recorded",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
