package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLotRepository creates a GormLotRepository with a mocked SQL connection
func newMockLotRepository(t *testing.T) (*GormLotRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLotRepository(gormDB), mock, mockDB
}

func lotColumns() []string {
	return []string{
		"id", "company_id", "tlc_code", "product_id", "facility_id",
		"production_date", "original_quantity", "unit",
		"available_quantity", "status", "expiry_date", "version",
	}
}

func TestGormLotRepository_FindByID(t *testing.T) {
	t.Run("finds existing lot", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		companyID := uuid.New()
		productID := uuid.New()
		facilityID := uuid.New()

		rows := sqlmock.NewRows(lotColumns()).AddRow(
			lotID, companyID, "TLC-2026-0042", productID, facilityID,
			time.Now(), decimal.NewFromInt(100), "KG",
			decimal.NewFromInt(100), "active", nil, 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "traceability_lots" WHERE id = \$1`).
			WithArgs(lotID, 1).
			WillReturnRows(rows)

		lot, err := repo.FindByID(context.Background(), lotID)

		assert.NoError(t, err)
		assert.NotNil(t, lot)
		assert.Equal(t, lotID, lot.ID)
		assert.Equal(t, "TLC-2026-0042", lot.TLCCode)
		assert.Equal(t, traceability.LotStatusActive, lot.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent lot", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "traceability_lots" WHERE id = \$1`).
			WithArgs(lotID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		lot, err := repo.FindByID(context.Background(), lotID)

		assert.Error(t, err)
		assert.Nil(t, lot)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLotRepository_FindByTLCCode(t *testing.T) {
	t.Run("finds lot by code within company", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		companyID := uuid.New()

		rows := sqlmock.NewRows(lotColumns()).AddRow(
			lotID, companyID, "TLC-2026-0042", uuid.New(), uuid.New(),
			time.Now(), decimal.NewFromInt(50), "CASE",
			decimal.NewFromInt(50), "active", nil, 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "traceability_lots" WHERE company_id = \$1 AND tlc_code = \$2`).
			WithArgs(companyID, "TLC-2026-0042", 1).
			WillReturnRows(rows)

		lot, err := repo.FindByTLCCode(context.Background(), companyID, "TLC-2026-0042")

		assert.NoError(t, err)
		assert.NotNil(t, lot)
		assert.Equal(t, companyID, lot.CompanyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("trims surrounding whitespace before querying", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "traceability_lots" WHERE company_id = \$1 AND tlc_code = \$2`).
			WithArgs(companyID, "TLC-2026-0042", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		lot, err := repo.FindByTLCCode(context.Background(), companyID, "  TLC-2026-0042  ")

		assert.Nil(t, lot)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLotRepository_FindActiveForCompany(t *testing.T) {
	t.Run("returns only active lots", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()

		rows := sqlmock.NewRows(lotColumns()).
			AddRow(uuid.New(), companyID, "TLC-A", uuid.New(), uuid.New(),
				time.Now(), decimal.NewFromInt(100), "KG",
				decimal.NewFromInt(80), "active", nil, 3).
			AddRow(uuid.New(), companyID, "TLC-B", uuid.New(), uuid.New(),
				time.Now(), decimal.NewFromInt(200), "KG",
				decimal.NewFromInt(200), "active", nil, 1)

		mock.ExpectQuery(`SELECT \* FROM "traceability_lots" WHERE company_id = \$1 AND status = \$2`).
			WithArgs(companyID, "active").
			WillReturnRows(rows)

		lots, err := repo.FindActiveForCompany(context.Background(), companyID)

		assert.NoError(t, err)
		assert.Len(t, lots, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLotRepository_CountForCompany(t *testing.T) {
	t.Run("counts lots for company", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "traceability_lots" WHERE company_id = \$1`).
			WithArgs(companyID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := repo.CountForCompany(context.Background(), companyID, shared.Filter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLotRepository_SaveWithLock(t *testing.T) {
	newVersionedLot := func(t *testing.T) *traceability.TraceabilityLot {
		t.Helper()
		lot, err := traceability.NewTraceabilityLot(
			uuid.New(), uuid.New(), uuid.New(),
			"TLC-2026-0042", time.Now(), decimal.NewFromInt(100), "KG",
		)
		require.NoError(t, err)
		lot.RefreshAvailableQuantity(decimal.NewFromInt(80))
		return lot
	}

	t.Run("updates row when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lot := newVersionedLot(t)

		mock.ExpectExec(`UPDATE "traceability_lots" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), lot)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when no row matches version", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lot := newVersionedLot(t)

		mock.ExpectExec(`UPDATE "traceability_lots" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), lot)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLotRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements LotRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		var _ traceability.LotRepository = repo
	})
}
