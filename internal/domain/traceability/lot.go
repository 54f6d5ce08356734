package traceability

import (
	"strings"
	"time"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle state of a traceability lot
type LotStatus string

const (
	LotStatusActive   LotStatus = "active"
	LotStatusRecalled LotStatus = "recalled"
	LotStatusExpired  LotStatus = "expired"
	LotStatusDepleted LotStatus = "depleted"
	LotStatusArchived LotStatus = "archived"
)

// IsValid returns true for a known lot status
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusRecalled, LotStatusExpired, LotStatusDepleted, LotStatusArchived:
		return true
	}
	return false
}

// TraceabilityLot is the aggregate root of the traceability ledger. The
// Traceability Lot Code (TLC) is the ledger's account key: human-assigned,
// globally unique, and immutable once tracking events reference it.
//
// AvailableQuantity is a materialized snapshot of the stock ledger's
// computed value. The event history is the source of truth; every write to
// the cache goes through RefreshAvailableQuantity, never an ad hoc update,
// so reconciliation can detect drift.
type TraceabilityLot struct {
	shared.CompanyAggregateRoot
	TLCCode           string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_lot_company_tlc,priority:2"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	FacilityID        uuid.UUID       `gorm:"type:uuid;not null;index"` // Originating facility
	ProductionDate    time.Time       `gorm:"type:date;not null"`
	OriginalQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	AvailableQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Cached ledger value in base units
	Status            LotStatus       `gorm:"type:varchar(20);not null;default:'active';index"`
	ExpiryDate        *time.Time      `gorm:"type:date"` // Derived from production date + shelf life; nil when exempt
}

// TableName returns the table name for GORM
func (TraceabilityLot) TableName() string {
	return "traceability_lots"
}

// NewTraceabilityLot creates a new lot at initial packing or harvest
func NewTraceabilityLot(
	companyID, productID, facilityID uuid.UUID,
	tlcCode string,
	productionDate time.Time,
	originalQuantity decimal.Decimal,
	unitCode string,
) (*TraceabilityLot, error) {
	tlcCode = strings.TrimSpace(tlcCode)
	if tlcCode == "" {
		return nil, shared.NewDomainError("INVALID_TLC", "Traceability lot code is required")
	}
	if len(tlcCode) > 100 {
		return nil, shared.NewDomainError("INVALID_TLC", "Traceability lot code cannot exceed 100 characters")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if facilityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FACILITY", "Facility ID cannot be empty")
	}
	if productionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PRODUCTION_DATE", "Production date is required")
	}
	if originalQuantity.IsNegative() || originalQuantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Original quantity must be positive")
	}

	unit, err := valueobject.ResolveUnit(unitCode)
	if err != nil {
		return nil, err
	}

	lot := &TraceabilityLot{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		TLCCode:              tlcCode,
		ProductID:            productID,
		FacilityID:           facilityID,
		ProductionDate:       productionDate,
		OriginalQuantity:     originalQuantity,
		Unit:                 unit.Code(),
		AvailableQuantity:    unit.ConvertToBase(originalQuantity),
		Status:               LotStatusActive,
	}

	lot.AddDomainEvent(NewLotCreatedEvent(lot))

	return lot, nil
}

// SetExpiryDate records the derived expiry date (production + shelf life)
func (l *TraceabilityLot) SetExpiryDate(expiry time.Time) {
	l.ExpiryDate = &expiry
	l.UpdatedAt = time.Now()
}

// RefreshAvailableQuantity is the single write path for the cached derived
// quantity. It is called by the stock ledger's apply-event routine inside
// the same transaction that appends the event. Negative values are stored
// as-is: they signal over-shipment and must stay visible.
func (l *TraceabilityLot) RefreshAvailableQuantity(computed decimal.Decimal) {
	previous := l.AvailableQuantity
	l.AvailableQuantity = computed
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	if l.Status == LotStatusActive && computed.LessThanOrEqual(decimal.Zero) && previous.GreaterThan(decimal.Zero) {
		l.Status = LotStatusDepleted
		l.AddDomainEvent(NewLotDepletedEvent(l, computed))
	}
	if l.Status == LotStatusDepleted && computed.GreaterThan(decimal.Zero) {
		// Returns or corrections can bring a depleted lot back into stock
		l.Status = LotStatusActive
	}
}

// Recall marks the lot (and by extension its descendants, handled by the
// lineage manager) as recalled.
func (l *TraceabilityLot) Recall() error {
	if l.Status == LotStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived lots cannot be recalled")
	}
	if l.Status == LotStatusRecalled {
		return nil
	}
	l.Status = LotStatusRecalled
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	l.AddDomainEvent(NewLotRecalledEvent(l))
	return nil
}

// MarkExpired flags the lot as expired (shelf life elapsed)
func (l *TraceabilityLot) MarkExpired() error {
	if l.Status == LotStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived lots cannot expire")
	}
	l.Status = LotStatusExpired
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Archive retires a lot from active tracking. A lot with submitted tracking
// events is immutable for archival; callers pass the count of submitted
// events so the invariant is enforced where the decision is made.
func (l *TraceabilityLot) Archive(submittedEventCount int64) error {
	if submittedEventCount > 0 {
		return shared.NewDomainError("LOT_HAS_SUBMITTED_EVENTS", "Lots with submitted tracking events cannot be archived")
	}
	if l.Status == LotStatusArchived {
		return nil
	}
	l.Status = LotStatusArchived
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// BaselineQuantity returns the original production quantity normalized to
// base units. It is the ledger's opening balance for the lot.
func (l *TraceabilityLot) BaselineQuantity() (decimal.Decimal, error) {
	unit, err := valueobject.ResolveUnit(l.Unit)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.ConvertToBase(l.OriginalQuantity), nil
}

// IsConsumable returns true when the lot may be used as a transformation input
func (l *TraceabilityLot) IsConsumable() bool {
	return l.Status == LotStatusActive
}

// IsNegativeStock returns true when the cached quantity is below zero
func (l *TraceabilityLot) IsNegativeStock() bool {
	return l.AvailableQuantity.IsNegative()
}
