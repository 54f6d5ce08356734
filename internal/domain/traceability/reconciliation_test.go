package traceability

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balanceFor reconciles a lot whose cached quantity has been set to actual
// against a ledger value of expected.
func balanceFor(t *testing.T, expected, actual string) InventoryBalance {
	t.Helper()
	lot := testLot(t, 100, "KG")
	lot.AvailableQuantity = decimal.RequireFromString(actual)

	computed := &StockComputation{
		Value:    decimal.RequireFromString(expected),
		BaseUnit: "KG",
		Breakdown: map[string]decimal.Decimal{
			FamilyProduction: decimal.RequireFromString(expected),
		},
	}
	return NewReconciliationEngine().Reconcile(lot, computed)
}

func TestReconciliationEngine_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		expected  string
		actual    string
		flag      BalanceFlag
		severity  BalanceSeverity
		deduction int
	}{
		{"exact match is normal", "100", "100", FlagNormal, SeverityOK, 0},
		{"5 percent is still normal", "100", "95", FlagNormal, SeverityOK, 0},
		{"6 percent shortage is medium", "100", "94", FlagAbnormal, SeverityMedium, 7},
		{"6 percent surplus is medium with lower deduction", "100", "106", FlagAbnormal, SeverityMedium, 5},
		{"15 percent shortage is high", "100", "85", FlagAbnormal, SeverityHigh, 12},
		{"15 percent surplus is high with lower deduction", "100", "115", FlagAbnormal, SeverityHigh, 10},
		{"30 percent shortage is a critical violation", "100", "70", FlagCriticalViolation, SeverityCritical, 20},
		{"30 percent surplus is critical with lower deduction", "100", "130", FlagCriticalViolation, SeverityCritical, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := balanceFor(t, tt.expected, tt.actual)

			assert.Equal(t, tt.flag, balance.Flag)
			assert.Equal(t, tt.severity, balance.Severity)
			assert.Equal(t, tt.deduction, balance.ComplianceDeduction)
		})
	}
}

func TestReconciliationEngine_Reconcile(t *testing.T) {
	t.Run("shortage is flagged as possible over-shipment", func(t *testing.T) {
		balance := balanceFor(t, "100", "70")

		assert.True(t, balance.IsShortage)
		assert.Contains(t, balance.Recommendation, "over-shipment")
		assert.True(t, balance.RequiresAnomaly())
	})

	t.Run("normal balance needs no anomaly", func(t *testing.T) {
		balance := balanceFor(t, "100", "100")

		assert.False(t, balance.RequiresAnomaly())
		assert.True(t, balance.Variance.IsZero())
	})

	t.Run("variance against zero expectation is total", func(t *testing.T) {
		balance := balanceFor(t, "0", "10")

		assert.Equal(t, FlagCriticalViolation, balance.Flag)
	})

	t.Run("snapshot key is stable for unchanged inputs", func(t *testing.T) {
		lot := testLot(t, 100, "KG")
		lot.AvailableQuantity = decimal.NewFromInt(70)
		computed := &StockComputation{Value: decimal.NewFromInt(100), Breakdown: map[string]decimal.Decimal{}}

		engine := NewReconciliationEngine()
		first := engine.Reconcile(lot, computed)
		second := engine.Reconcile(lot, computed)

		assert.Equal(t, first.SnapshotKey, second.SnapshotKey)
	})

	t.Run("snapshot key changes when actual changes", func(t *testing.T) {
		lot := testLot(t, 100, "KG")
		computed := &StockComputation{Value: decimal.NewFromInt(100), Breakdown: map[string]decimal.Decimal{}}

		engine := NewReconciliationEngine()
		lot.AvailableQuantity = decimal.NewFromInt(70)
		first := engine.Reconcile(lot, computed)
		lot.AvailableQuantity = decimal.NewFromInt(71)
		second := engine.Reconcile(lot, computed)

		assert.NotEqual(t, first.SnapshotKey, second.SnapshotKey)
	})

	t.Run("breakdown splits into input output and loss", func(t *testing.T) {
		lot := testLot(t, 100, "KG")
		lot.AvailableQuantity = decimal.NewFromInt(45)
		computed := &StockComputation{
			Value: decimal.NewFromInt(45),
			Breakdown: map[string]decimal.Decimal{
				FamilyProduction:  decimal.NewFromInt(100),
				FamilyReceiving:   decimal.NewFromInt(20),
				FamilyShipping:    decimal.NewFromInt(-50),
				FamilyDisposal:    decimal.NewFromInt(-10),
				FamilyConsumption: decimal.NewFromInt(-15),
			},
		}

		balance := NewReconciliationEngine().Reconcile(lot, computed)

		assert.True(t, balance.TotalInput.Equal(decimal.NewFromInt(120)))
		assert.True(t, balance.TotalOutput.Equal(decimal.NewFromInt(50)))
		assert.True(t, balance.TotalLoss.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, FlagNormal, balance.Flag)
	})
}

func TestInventoryAnomaly(t *testing.T) {
	t.Run("created open with a detection event", func(t *testing.T) {
		lot := testLot(t, 100, "KG")
		balance := balanceFor(t, "100", "70")

		anomaly := NewInventoryAnomaly(lot.CompanyID, balance)

		assert.Equal(t, AnomalyStatusOpen, anomaly.Status)
		assert.Equal(t, balance.SnapshotKey, anomaly.SnapshotKey)
		assert.Len(t, anomaly.GetDomainEvents(), 1)
	})

	t.Run("resolve closes once", func(t *testing.T) {
		lot := testLot(t, 100, "KG")
		anomaly := NewInventoryAnomaly(lot.CompanyID, balanceFor(t, "100", "70"))

		require.NoError(t, anomaly.Resolve("physical count confirmed; correction event recorded"))
		assert.Equal(t, AnomalyStatusResolved, anomaly.Status)
		assert.NotNil(t, anomaly.ResolvedAt)

		assert.Error(t, anomaly.Resolve("again"))
	})
}
