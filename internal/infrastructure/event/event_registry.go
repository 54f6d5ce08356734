package event

import (
	"github.com/foodtrace/backend/internal/domain/catalog"
	"github.com/foodtrace/backend/internal/domain/traceability"
)

// RegisterAllEvents registers all domain event types with the serializer so
// persisted or relayed events can be deserialized back into their Go types.
func RegisterAllEvents(serializer *EventSerializer) {
	// Traceability domain events
	serializer.Register(traceability.DomainEventLotCreated, &traceability.LotCreatedEvent{})
	serializer.Register(traceability.DomainEventLotDepleted, &traceability.LotDepletedEvent{})
	serializer.Register(traceability.DomainEventLotRecalled, &traceability.LotRecalledEvent{})
	serializer.Register(traceability.DomainEventCTESubmitted, &traceability.CTESubmittedEvent{})
	serializer.Register(traceability.DomainEventAnomalyDetected, &traceability.AnomalyDetectedEvent{})

	// Catalog domain events
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
}
