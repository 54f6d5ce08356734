package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAnomalyRepository implements AnomalyRepository using GORM
type GormAnomalyRepository struct {
	db *gorm.DB
}

// NewGormAnomalyRepository creates a new GormAnomalyRepository
func NewGormAnomalyRepository(db *gorm.DB) *GormAnomalyRepository {
	return &GormAnomalyRepository{db: db}
}

// FindByID finds an anomaly by its ID
func (r *GormAnomalyRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.InventoryAnomaly, error) {
	var anomaly traceability.InventoryAnomaly
	if err := r.db.WithContext(ctx).First(&anomaly, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &anomaly, nil
}

// FindOpenBySnapshotKey finds the open anomaly covering one variance
// snapshot. This lookup is what makes re-detection idempotent.
func (r *GormAnomalyRepository) FindOpenBySnapshotKey(ctx context.Context, companyID uuid.UUID, snapshotKey string) (*traceability.InventoryAnomaly, error) {
	var anomaly traceability.InventoryAnomaly
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND snapshot_key = ? AND status = ?", companyID, snapshotKey, traceability.AnomalyStatusOpen).
		First(&anomaly).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &anomaly, nil
}

// FindOpenByLot returns all open anomalies for one lot
func (r *GormAnomalyRepository) FindOpenByLot(ctx context.Context, lotID uuid.UUID) ([]traceability.InventoryAnomaly, error) {
	var anomalies []traceability.InventoryAnomaly
	if err := r.db.WithContext(ctx).
		Where("lot_id = ? AND status = ?", lotID, traceability.AnomalyStatusOpen).
		Order("created_at DESC").
		Find(&anomalies).Error; err != nil {
		return nil, err
	}
	return anomalies, nil
}

// FindAllForCompany returns a page of a company's anomalies
func (r *GormAnomalyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]traceability.InventoryAnomaly, int64, error) {
	base := r.db.WithContext(ctx).Model(&traceability.InventoryAnomaly{}).Where("company_id = ?", companyID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			base = base.Where("status = ?", value)
		case "severity":
			base = base.Where("severity = ?", value)
		case "lot_id":
			base = base.Where("lot_id = ?", value)
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, AnomalySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query := base.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var anomalies []traceability.InventoryAnomaly
	if err := query.Find(&anomalies).Error; err != nil {
		return nil, 0, err
	}
	return anomalies, total, nil
}

// Save persists an anomaly
func (r *GormAnomalyRepository) Save(ctx context.Context, anomaly *traceability.InventoryAnomaly) error {
	return r.db.WithContext(ctx).Save(anomaly).Error
}

var _ traceability.AnomalyRepository = (*GormAnomalyRepository)(nil)
