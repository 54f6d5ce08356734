package traceability

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LotRepository defines persistence operations for traceability lots
type LotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TraceabilityLot, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*TraceabilityLot, error)
	FindByTLCCode(ctx context.Context, companyID uuid.UUID, tlcCode string) (*TraceabilityLot, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]TraceabilityLot, error)
	FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]TraceabilityLot, error)
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, lot *TraceabilityLot) error
	// SaveWithLock persists the lot only if its version matches the loaded
	// one, returning ErrConcurrencyConflict on a lost update.
	SaveWithLock(ctx context.Context, lot *TraceabilityLot) error
}

// TrackingEventRepository defines persistence for the append-only event log.
// There is deliberately no Update or Delete: submitted events are immutable
// facts, and the only post-submit mutation is the supersession pointer.
type TrackingEventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TrackingEvent, error)
	FindByLot(ctx context.Context, lotID uuid.UUID) ([]TrackingEvent, error)
	FindSubmittedByLot(ctx context.Context, lotID uuid.UUID) ([]TrackingEvent, error)
	FindByLotPaged(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]TrackingEvent, int64, error)
	CountSubmittedByLot(ctx context.Context, lotID uuid.UUID) (int64, error)
	Append(ctx context.Context, event *TrackingEvent) error
	// MarkSuperseded records the correction pointer on an already-submitted
	// event. It never touches any other column.
	MarkSuperseded(ctx context.Context, original *TrackingEvent) error
}

// LineageRepository defines persistence for transformation edges
type LineageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransformationInput, error)
	FindByChildLot(ctx context.Context, childLotID uuid.UUID) ([]TransformationInput, error)
	FindByParentLot(ctx context.Context, parentLotID uuid.UUID) ([]TransformationInput, error)
	FindByTransformationEvent(ctx context.Context, eventID uuid.UUID) ([]TransformationInput, error)
	Save(ctx context.Context, edge *TransformationInput) error
}

// AnomalyRepository defines persistence for reconciliation anomalies
type AnomalyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryAnomaly, error)
	FindOpenBySnapshotKey(ctx context.Context, companyID uuid.UUID, snapshotKey string) (*InventoryAnomaly, error)
	FindOpenByLot(ctx context.Context, lotID uuid.UUID) ([]InventoryAnomaly, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]InventoryAnomaly, int64, error)
	Save(ctx context.Context, anomaly *InventoryAnomaly) error
}
