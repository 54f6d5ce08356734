package persistence

import (
	"context"
	"errors"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLineageRepository implements LineageRepository using GORM
type GormLineageRepository struct {
	db *gorm.DB
}

// NewGormLineageRepository creates a new GormLineageRepository
func NewGormLineageRepository(db *gorm.DB) *GormLineageRepository {
	return &GormLineageRepository{db: db}
}

// FindByID finds a transformation edge by its ID
func (r *GormLineageRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.TransformationInput, error) {
	var edge traceability.TransformationInput
	if err := r.db.WithContext(ctx).First(&edge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// FindByChildLot returns the input edges of a lot
func (r *GormLineageRepository) FindByChildLot(ctx context.Context, childLotID uuid.UUID) ([]traceability.TransformationInput, error) {
	var edges []traceability.TransformationInput
	if err := r.db.WithContext(ctx).
		Where("child_lot_id = ?", childLotID).
		Order("created_at ASC").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// FindByParentLot returns the output edges of a lot
func (r *GormLineageRepository) FindByParentLot(ctx context.Context, parentLotID uuid.UUID) ([]traceability.TransformationInput, error) {
	var edges []traceability.TransformationInput
	if err := r.db.WithContext(ctx).
		Where("parent_lot_id = ?", parentLotID).
		Order("created_at ASC").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// FindByTransformationEvent returns all edges created by one transformation event
func (r *GormLineageRepository) FindByTransformationEvent(ctx context.Context, eventID uuid.UUID) ([]traceability.TransformationInput, error) {
	var edges []traceability.TransformationInput
	if err := r.db.WithContext(ctx).
		Where("transformation_event_id = ?", eventID).
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// Save inserts a transformation edge. Edges are immutable once written.
func (r *GormLineageRepository) Save(ctx context.Context, edge *traceability.TransformationInput) error {
	return r.db.WithContext(ctx).Create(edge).Error
}

var _ traceability.LineageRepository = (*GormLineageRepository)(nil)
