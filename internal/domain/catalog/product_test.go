package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	companyID := uuid.New()

	t.Run("creates product successfully", func(t *testing.T) {
		product, err := NewProduct(companyID, "romaine-01", "Romaine Lettuce", "Leafy_Greens", "kg")

		require.NoError(t, err)
		assert.Equal(t, "ROMAINE-01", product.Code)
		assert.Equal(t, "leafy_greens", product.Category)
		assert.Equal(t, "KG", product.Unit)
		assert.True(t, product.RequiresCTE)
		assert.Equal(t, ProductStatusActive, product.Status)
		assert.Len(t, product.GetDomainEvents(), 1)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewProduct(companyID, "", "Romaine", "leafy_greens", "KG")

		assert.Error(t, err)
	})

	t.Run("fails with empty category", func(t *testing.T) {
		_, err := NewProduct(companyID, "P-1", "Romaine", "  ", "KG")

		assert.Error(t, err)
	})

	t.Run("fails with unsupported unit", func(t *testing.T) {
		_, err := NewProduct(companyID, "P-1", "Romaine", "leafy_greens", "CRATE-OF-9")

		assert.Error(t, err)
	})
}

func TestProduct_SetShelfLife(t *testing.T) {
	product, err := NewProduct(uuid.New(), "P-1", "Cheddar", "dairy", "KG")
	require.NoError(t, err)

	t.Run("sets positive shelf life", func(t *testing.T) {
		err := product.SetShelfLife(90)

		require.NoError(t, err)
		require.True(t, product.HasShelfLife())
		assert.Equal(t, 90, *product.ShelfLifeDays)
	})

	t.Run("rejects zero shelf life", func(t *testing.T) {
		err := product.SetShelfLife(0)

		assert.Error(t, err)
	})

	t.Run("clear exempts product from expiry checks", func(t *testing.T) {
		product.ClearShelfLife()

		assert.False(t, product.HasShelfLife())
	})
}

func TestProduct_SetColdChainLimits(t *testing.T) {
	product, err := NewProduct(uuid.New(), "P-2", "Atlantic Salmon", "seafood", "KG")
	require.NoError(t, err)

	t.Run("sets valid window", func(t *testing.T) {
		err := product.SetColdChainLimits(decimal.NewFromInt(-2), decimal.NewFromInt(4))

		require.NoError(t, err)
		require.NotNil(t, product.ColdChainMaxTemp)
		assert.Equal(t, "4", product.ColdChainMaxTemp.String())
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		err := product.SetColdChainLimits(decimal.NewFromInt(10), decimal.NewFromInt(2))

		assert.Error(t, err)
	})
}
