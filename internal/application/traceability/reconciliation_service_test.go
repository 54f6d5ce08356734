package traceability

import (
	"context"
	"testing"

	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// driftLot seeds a lot whose cached quantity has drifted from the ledger
func (f *fixture) driftLot(t *testing.T, tlcCode string, baseline int64, cached int64) *traceability.TraceabilityLot {
	t.Helper()
	product := f.seedProduct(t, "Romaine", "leafy_greens", nil)
	lot := f.seedLot(t, product, tlcCode, baseline)
	lot.AvailableQuantity = decimal.NewFromInt(cached)
	require.NoError(t, f.lots.Save(context.Background(), lot))
	return lot
}

func TestReconciliationService_ReconcileLot(t *testing.T) {
	ctx := context.Background()

	t.Run("clean lot reconciles normal with no anomaly", func(t *testing.T) {
		f := newFixture()
		f.driftLot(t, "TLC-N1", 100, 100)
		service := NewReconciliationService(f.scope, zap.NewNop())

		balance, err := service.ReconcileLot(ctx, f.companyID, "TLC-N1")

		require.NoError(t, err)
		assert.Equal(t, "normal", balance.Flag)
		assert.Nil(t, balance.AnomalyID)
		assert.Empty(t, f.anomalies.anomalies)
	})

	t.Run("shortage opens an anomaly with the shortage deduction", func(t *testing.T) {
		f := newFixture()
		lot := f.driftLot(t, "TLC-N2", 100, 70)
		service := NewReconciliationService(f.scope, zap.NewNop())

		balance, err := service.ReconcileLot(ctx, f.companyID, "TLC-N2")

		require.NoError(t, err)
		assert.Equal(t, "critical_violation", balance.Flag)
		assert.Equal(t, 20, balance.ComplianceDeduction)
		require.NotNil(t, balance.AnomalyID)

		open, err := f.anomalies.FindOpenByLot(ctx, lot.ID)
		require.NoError(t, err)
		require.Len(t, open, 1)
	})

	t.Run("re-running on unchanged inputs does not duplicate the anomaly", func(t *testing.T) {
		f := newFixture()
		lot := f.driftLot(t, "TLC-N3", 100, 85)
		service := NewReconciliationService(f.scope, zap.NewNop())

		first, err := service.ReconcileLot(ctx, f.companyID, "TLC-N3")
		require.NoError(t, err)
		require.NotNil(t, first.AnomalyID)

		second, err := service.ReconcileLot(ctx, f.companyID, "TLC-N3")
		require.NoError(t, err)
		assert.Nil(t, second.AnomalyID)

		open, err := f.anomalies.FindOpenByLot(ctx, lot.ID)
		require.NoError(t, err)
		assert.Len(t, open, 1)
	})

	t.Run("changed variance opens a fresh anomaly", func(t *testing.T) {
		f := newFixture()
		lot := f.driftLot(t, "TLC-N4", 100, 85)
		service := NewReconciliationService(f.scope, zap.NewNop())

		_, err := service.ReconcileLot(ctx, f.companyID, "TLC-N4")
		require.NoError(t, err)

		stored, err := f.lots.FindByID(ctx, lot.ID)
		require.NoError(t, err)
		stored.AvailableQuantity = decimal.NewFromInt(60)
		require.NoError(t, f.lots.Save(ctx, stored))

		second, err := service.ReconcileLot(ctx, f.companyID, "TLC-N4")
		require.NoError(t, err)
		assert.NotNil(t, second.AnomalyID)

		open, err := f.anomalies.FindOpenByLot(ctx, lot.ID)
		require.NoError(t, err)
		assert.Len(t, open, 2)
	})
}

func TestReconciliationService_SweepCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps every active lot and isolates failures", func(t *testing.T) {
		f := newFixture()
		f.driftLot(t, "TLC-W1", 100, 100)
		f.driftLot(t, "TLC-W2", 100, 70)

		// A lot with corrupt historical unit data must not sink the sweep
		broken := f.driftLot(t, "TLC-W3", 100, 100)
		broken.Unit = "FLAGON"
		require.NoError(t, f.lots.Save(ctx, broken))

		service := NewReconciliationService(f.scope, zap.NewNop())

		result, err := service.SweepCompany(ctx, f.companyID)

		require.NoError(t, err)
		assert.Equal(t, 2, result.LotsChecked)
		assert.Equal(t, 1, result.AnomaliesOpened)
		require.Contains(t, result.Failures, "TLC-W3")
	})

	t.Run("second sweep reuses open anomalies", func(t *testing.T) {
		f := newFixture()
		f.driftLot(t, "TLC-W4", 100, 70)
		service := NewReconciliationService(f.scope, zap.NewNop())

		first, err := service.SweepCompany(ctx, f.companyID)
		require.NoError(t, err)
		assert.Equal(t, 1, first.AnomaliesOpened)

		second, err := service.SweepCompany(ctx, f.companyID)
		require.NoError(t, err)
		assert.Equal(t, 0, second.AnomaliesOpened)
		assert.Equal(t, 1, second.AnomaliesReused)
	})
}

func TestReconciliationService_ResolveAnomaly(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.driftLot(t, "TLC-R1", 100, 70)
	service := NewReconciliationService(f.scope, zap.NewNop())

	balance, err := service.ReconcileLot(ctx, f.companyID, "TLC-R1")
	require.NoError(t, err)
	require.NotNil(t, balance.AnomalyID)

	t.Run("resolves with a note", func(t *testing.T) {
		resolved, err := service.ResolveAnomaly(ctx, f.companyID, *balance.AnomalyID, "counted and corrected on 2026-08-29")

		require.NoError(t, err)
		assert.Equal(t, "resolved", resolved.Status)
		assert.NotNil(t, resolved.ResolvedAt)
	})

	t.Run("another company cannot resolve it", func(t *testing.T) {
		f2 := newFixture()
		f2.driftLot(t, "TLC-R2", 100, 70)
		otherService := NewReconciliationService(f2.scope, zap.NewNop())
		otherBalance, err := otherService.ReconcileLot(ctx, f2.companyID, "TLC-R2")
		require.NoError(t, err)
		require.NotNil(t, otherBalance.AnomalyID)

		_, err = otherService.ResolveAnomaly(ctx, uuid.New(), *otherBalance.AnomalyID, "nope")

		assert.Error(t, err)
	})
}
