package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.TraceabilityLot, error) {
	var lot traceability.TraceabilityLot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByIDForCompany finds a lot by ID within a company
func (r *GormLotRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*traceability.TraceabilityLot, error) {
	var lot traceability.TraceabilityLot
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByTLCCode finds a lot by its traceability lot code within a company
func (r *GormLotRepository) FindByTLCCode(ctx context.Context, companyID uuid.UUID, tlcCode string) (*traceability.TraceabilityLot, error) {
	var lot traceability.TraceabilityLot
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND tlc_code = ?", companyID, strings.TrimSpace(tlcCode)).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindAllForCompany finds all lots for a company
func (r *GormLotRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]traceability.TraceabilityLot, error) {
	var lots []traceability.TraceabilityLot
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&traceability.TraceabilityLot{}).
			Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindActiveForCompany finds every active lot of a company (reconciliation sweep)
func (r *GormLotRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]traceability.TraceabilityLot, error) {
	var lots []traceability.TraceabilityLot
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, traceability.LotStatusActive).
		Order("created_at ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// ActiveCompanyIDs lists the distinct companies that own at least one active
// lot. The reconciliation sweeper uses this to know which companies to walk;
// it is not part of the domain repository contract.
func (r *GormLotRepository) ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&traceability.TraceabilityLot{}).
		Where("status = ?", traceability.LotStatusActive).
		Distinct("company_id").
		Pluck("company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountForCompany counts lots for a company matching the filter
func (r *GormLotRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&traceability.TraceabilityLot{}).
			Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a lot (insert or full update)
func (r *GormLotRepository) Save(ctx context.Context, lot *traceability.TraceabilityLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveWithLock saves with optimistic locking (checks version). A lost update
// returns ErrConcurrencyConflict so callers can retry.
func (r *GormLotRepository) SaveWithLock(ctx context.Context, lot *traceability.TraceabilityLot) error {
	result := r.db.WithContext(ctx).
		Model(lot).
		Where("id = ? AND version = ?", lot.ID, lot.Version-1).
		Updates(map[string]interface{}{
			"available_quantity": lot.AvailableQuantity,
			"status":             lot.Status,
			"expiry_date":        lot.ExpiryDate,
			"version":            lot.Version,
			"updated_at":         lot.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies filter options including pagination
func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, LotSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLotRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("tlc_code ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "facility_id":
			query = query.Where("facility_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "negative_stock":
			if value == true {
				query = query.Where("available_quantity < 0")
			}
		case "expiring_before":
			query = query.Where("expiry_date IS NOT NULL AND expiry_date <= ?", value)
		}
	}
	return query
}

var _ traceability.LotRepository = (*GormLotRepository)(nil)
