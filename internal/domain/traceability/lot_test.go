package traceability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceabilityLot(t *testing.T) {
	t.Run("creates active lot with normalized cache", func(t *testing.T) {
		lot, err := NewTraceabilityLot(uuid.New(), uuid.New(), uuid.New(), "TLC-2026-0001", time.Now(), decimal.NewFromInt(500), "g")

		require.NoError(t, err)
		assert.Equal(t, LotStatusActive, lot.Status)
		assert.Equal(t, "G", lot.Unit)
		// 500 g cached as 0.5 kg
		assert.True(t, lot.AvailableQuantity.Equal(decimal.RequireFromString("0.5")))
		assert.Len(t, lot.GetDomainEvents(), 1)
	})

	t.Run("rejects blank TLC code", func(t *testing.T) {
		_, err := NewTraceabilityLot(uuid.New(), uuid.New(), uuid.New(), "  ", time.Now(), decimal.NewFromInt(1), "KG")

		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewTraceabilityLot(uuid.New(), uuid.New(), uuid.New(), "TLC-1", time.Now(), decimal.Zero, "KG")

		assert.Error(t, err)
	})

	t.Run("rejects unsupported unit", func(t *testing.T) {
		_, err := NewTraceabilityLot(uuid.New(), uuid.New(), uuid.New(), "TLC-1", time.Now(), decimal.NewFromInt(1), "BARREL")

		assert.Error(t, err)
	})
}

func TestTraceabilityLot_RefreshAvailableQuantity(t *testing.T) {
	t.Run("stores negative values untouched", func(t *testing.T) {
		lot := testLot(t, 10, "KG")

		lot.RefreshAvailableQuantity(decimal.NewFromInt(-4))

		assert.True(t, lot.IsNegativeStock())
		assert.True(t, lot.AvailableQuantity.Equal(decimal.NewFromInt(-4)))
	})

	t.Run("depletes at zero and reactivates on return", func(t *testing.T) {
		lot := testLot(t, 10, "KG")

		lot.RefreshAvailableQuantity(decimal.Zero)
		assert.Equal(t, LotStatusDepleted, lot.Status)

		lot.RefreshAvailableQuantity(decimal.NewFromInt(3))
		assert.Equal(t, LotStatusActive, lot.Status)
	})

	t.Run("bumps the version for optimistic locking", func(t *testing.T) {
		lot := testLot(t, 10, "KG")
		before := lot.Version

		lot.RefreshAvailableQuantity(decimal.NewFromInt(8))

		assert.Equal(t, before+1, lot.Version)
	})
}

func TestTraceabilityLot_Lifecycle(t *testing.T) {
	t.Run("recall is idempotent and blocks consumption", func(t *testing.T) {
		lot := testLot(t, 10, "KG")

		require.NoError(t, lot.Recall())
		require.NoError(t, lot.Recall())

		assert.Equal(t, LotStatusRecalled, lot.Status)
		assert.False(t, lot.IsConsumable())
	})

	t.Run("archive refuses lots with submitted events", func(t *testing.T) {
		lot := testLot(t, 10, "KG")

		assert.Error(t, lot.Archive(3))
		require.NoError(t, lot.Archive(0))
		assert.Equal(t, LotStatusArchived, lot.Status)
	})

	t.Run("archived lot cannot be recalled", func(t *testing.T) {
		lot := testLot(t, 10, "KG")
		require.NoError(t, lot.Archive(0))

		assert.Error(t, lot.Recall())
	})
}

func TestTraceabilityLot_BaselineQuantity(t *testing.T) {
	lot := testLot(t, 100, "LB")

	baseline, err := lot.BaselineQuantity()

	require.NoError(t, err)
	assert.True(t, baseline.Equal(decimal.RequireFromString("45.3592")))
}
