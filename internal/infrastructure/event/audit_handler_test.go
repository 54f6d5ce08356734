package event

import (
	"context"
	"testing"
	"time"

	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newAuditTestLot(t *testing.T, tlcCode string) *traceability.TraceabilityLot {
	t.Helper()
	lot, err := traceability.NewTraceabilityLot(
		uuid.New(), uuid.New(), uuid.New(),
		tlcCode,
		time.Now().AddDate(0, 0, -1),
		decimal.NewFromInt(100), "KG",
	)
	require.NoError(t, err)
	return lot
}

func TestAuditLogHandler(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	core, logs := observer.New(zap.InfoLevel)
	handler := NewAuditLogHandler(serializer, zap.New(core))

	t.Run("logs registered event with payload", func(t *testing.T) {
		lot := newAuditTestLot(t, "TLC-2026-0001")
		evt := traceability.NewLotCreatedEvent(lot)

		err := handler.Handle(context.Background(), evt)
		require.NoError(t, err)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, "domain event recorded", entries[0].Message)

		fields := entries[0].ContextMap()
		assert.Equal(t, traceability.DomainEventLotCreated, fields["event_type"])
		assert.Contains(t, fields["payload"].(string), "TLC-2026-0001")
	})

	t.Run("receives all event types", func(t *testing.T) {
		assert.Empty(t, handler.EventTypes())
	})
}

func TestAuditLogHandlerIsWildcard(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	defer func() { _ = bus.Stop(context.Background()) }()

	bus.Subscribe(NewAuditLogHandler(serializer, zap.New(core)))

	lot := newAuditTestLot(t, "TLC-2026-0002")
	require.NoError(t, bus.Publish(context.Background(), traceability.NewLotRecalledEvent(lot)))

	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, traceability.DomainEventLotRecalled, entries[0].ContextMap()["event_type"])
}
