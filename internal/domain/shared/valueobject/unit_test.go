package valueobject

import (
	"errors"
	"testing"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnit(t *testing.T) {
	t.Run("resolves registered mass unit", func(t *testing.T) {
		unit, err := ResolveUnit("KG")

		require.NoError(t, err)
		assert.Equal(t, "KG", unit.Code())
		assert.Equal(t, DimensionMass, unit.Dimension())
		assert.True(t, unit.IsBaseUnit())
	})

	t.Run("resolves case-insensitively with whitespace", func(t *testing.T) {
		unit, err := ResolveUnit("  lb ")

		require.NoError(t, err)
		assert.Equal(t, "LB", unit.Code())
	})

	t.Run("resolves count unit", func(t *testing.T) {
		unit, err := ResolveUnit("case")

		require.NoError(t, err)
		assert.True(t, unit.IsCountBased())
	})

	t.Run("rejects unrecognized unit", func(t *testing.T) {
		_, err := ResolveUnit("BUSHEL")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.ErrUnsupportedUnit.Code, domainErr.Code)
	})

	t.Run("rejects empty unit", func(t *testing.T) {
		_, err := ResolveUnit("")

		assert.Error(t, err)
	})
}

func TestUnit_ConvertToBase(t *testing.T) {
	tests := []struct {
		name     string
		unitCode string
		amount   decimal.Decimal
		expected string
	}{
		{"kilograms pass through", "KG", decimal.NewFromInt(10), "10"},
		{"grams to kilograms", "G", decimal.NewFromInt(2500), "2.5"},
		{"tonnes to kilograms", "T", decimal.NewFromFloat(0.5), "500"},
		{"pounds to kilograms", "LB", decimal.NewFromInt(100), "45.3592"},
		{"ounces to kilograms", "OZ", decimal.NewFromInt(16), "0.4536"},
		{"count units pass through", "EACH", decimal.NewFromInt(144), "144"},
		{"cases pass through", "CASE", decimal.NewFromInt(12), "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := MustResolveUnit(tt.unitCode)

			result := unit.ConvertToBase(tt.amount)

			assert.Equal(t, tt.expected, result.String())
		})
	}
}

func TestUnit_Scan(t *testing.T) {
	t.Run("scans registered code", func(t *testing.T) {
		var unit Unit
		err := unit.Scan("g")

		require.NoError(t, err)
		assert.Equal(t, "G", unit.Code())
		assert.Equal(t, DimensionMass, unit.Dimension())
	})

	t.Run("keeps unknown historical code readable", func(t *testing.T) {
		var unit Unit
		err := unit.Scan("FIRKIN")

		require.NoError(t, err)
		assert.Equal(t, "FIRKIN", unit.Code())
		assert.False(t, IsSupportedUnit(unit.Code()))
	})

	t.Run("scans nil to zero value", func(t *testing.T) {
		var unit Unit
		err := unit.Scan(nil)

		require.NoError(t, err)
		assert.True(t, unit.IsZero())
	})
}

func TestNewQuantity(t *testing.T) {
	t.Run("creates quantity with resolved unit", func(t *testing.T) {
		q, err := NewQuantity(decimal.NewFromInt(500), "G")

		require.NoError(t, err)
		assert.Equal(t, "0.5", q.InBaseUnit().String())
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewQuantity(decimal.NewFromInt(-1), "KG")

		assert.Error(t, err)
	})

	t.Run("rejects unsupported unit", func(t *testing.T) {
		_, err := NewQuantity(decimal.NewFromInt(1), "CUBIT")

		assert.Error(t, err)
	})
}
