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

// GormTrackingEventRepository implements TrackingEventRepository using GORM.
// The table is append-only: the only UPDATE this repository ever issues sets
// the supersession pointer when a correction lands.
type GormTrackingEventRepository struct {
	db *gorm.DB
}

// NewGormTrackingEventRepository creates a new GormTrackingEventRepository
func NewGormTrackingEventRepository(db *gorm.DB) *GormTrackingEventRepository {
	return &GormTrackingEventRepository{db: db}
}

// FindByID finds a tracking event by its ID
func (r *GormTrackingEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.TrackingEvent, error) {
	var event traceability.TrackingEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// FindByLot returns the complete event history of a lot, including drafts
// and superseded events, oldest first.
func (r *GormTrackingEventRepository) FindByLot(ctx context.Context, lotID uuid.UUID) ([]traceability.TrackingEvent, error) {
	var events []traceability.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("event_date ASC, created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindSubmittedByLot returns only the effective (submitted) events of a lot
func (r *GormTrackingEventRepository) FindSubmittedByLot(ctx context.Context, lotID uuid.UUID) ([]traceability.TrackingEvent, error) {
	var events []traceability.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("lot_id = ? AND status = ?", lotID, traceability.EventStatusSubmitted).
		Order("event_date ASC, created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindByLotPaged returns a page of a lot's events, newest first
func (r *GormTrackingEventRepository) FindByLotPaged(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]traceability.TrackingEvent, int64, error) {
	base := r.db.WithContext(ctx).Model(&traceability.TrackingEvent{}).Where("lot_id = ?", lotID)
	for key, value := range filter.Filters {
		switch key {
		case "event_type":
			base = base.Where("event_type = ?", value)
		case "status":
			base = base.Where("status = ?", value)
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, TrackingEventSortFields, "event_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query := base.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var events []traceability.TrackingEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// CountSubmittedByLot counts a lot's submitted events
func (r *GormTrackingEventRepository) CountSubmittedByLot(ctx context.Context, lotID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&traceability.TrackingEvent{}).
		Where("lot_id = ? AND status = ?", lotID, traceability.EventStatusSubmitted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Append inserts a new event row. Create, never Save: an existing row must
// not be overwritten through this path.
func (r *GormTrackingEventRepository) Append(ctx context.Context, event *traceability.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// MarkSuperseded records the correction pointer on a submitted event. It
// guards on the current status so a second concurrent correction loses.
func (r *GormTrackingEventRepository) MarkSuperseded(ctx context.Context, original *traceability.TrackingEvent) error {
	result := r.db.WithContext(ctx).
		Model(&traceability.TrackingEvent{}).
		Where("id = ? AND status = ?", original.ID, traceability.EventStatusSubmitted).
		Updates(map[string]interface{}{
			"status":        original.Status,
			"superseded_by": original.SupersededBy,
			"updated_at":    original.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ traceability.TrackingEventRepository = (*GormTrackingEventRepository)(nil)
