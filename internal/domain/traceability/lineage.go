package traceability

import (
	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransformationInput is a directed lineage edge: parent lot consumed into
// child lot by a transformation event. QuantityUsed is authoritative for the
// parent's consumption; the transformation event's own quantity describes
// the child's output and never doubles as consumption.
type TransformationInput struct {
	shared.BaseEntity
	CompanyID             uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChildLotID            uuid.UUID        `gorm:"type:uuid;not null;index:idx_lineage_child"`
	ParentLotID           uuid.UUID        `gorm:"type:uuid;not null;index:idx_lineage_parent"`
	TransformationEventID uuid.UUID        `gorm:"type:uuid;not null;index"`
	QuantityUsed          decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Unit                  string           `gorm:"type:varchar(20);not null"`
	WasteAllowance        *decimal.Decimal `gorm:"type:decimal(18,4)"` // Expected processing loss
	WasteActual           *decimal.Decimal `gorm:"type:decimal(18,4)"` // Recorded processing loss
	WasteReason           string           `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TransformationInput) TableName() string {
	return "transformation_inputs"
}

// NewTransformationInput creates a lineage edge
func NewTransformationInput(
	companyID, childLotID, parentLotID, transformationEventID uuid.UUID,
	quantityUsed decimal.Decimal,
	unitCode string,
) (*TransformationInput, error) {
	if childLotID == uuid.Nil || parentLotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINEAGE_EDGE", "Both parent and child lot IDs are required")
	}
	if childLotID == parentLotID {
		return nil, shared.ErrLineageCycle
	}
	if transformationEventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINEAGE_EDGE", "Transformation event ID is required")
	}
	if quantityUsed.IsNegative() || quantityUsed.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity used must be positive")
	}

	unit, err := valueobject.ResolveUnit(unitCode)
	if err != nil {
		return nil, err
	}

	return &TransformationInput{
		BaseEntity:            shared.NewBaseEntity(),
		CompanyID:             companyID,
		ChildLotID:            childLotID,
		ParentLotID:           parentLotID,
		TransformationEventID: transformationEventID,
		QuantityUsed:          quantityUsed,
		Unit:                  unit.Code(),
	}, nil
}

// WithWaste records expected and actual processing loss on the edge
func (t *TransformationInput) WithWaste(allowance, actual *decimal.Decimal, reason string) error {
	if allowance != nil && allowance.IsNegative() {
		return shared.NewDomainError("INVALID_WASTE", "Waste allowance cannot be negative")
	}
	if actual != nil && actual.IsNegative() {
		return shared.NewDomainError("INVALID_WASTE", "Actual waste cannot be negative")
	}
	t.WasteAllowance = allowance
	t.WasteActual = actual
	t.WasteReason = reason
	return nil
}

// QuantityUsedInBase returns the consumed quantity normalized to base units
func (t *TransformationInput) QuantityUsedInBase() (decimal.Decimal, error) {
	unit, err := valueobject.ResolveUnit(t.Unit)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.ConvertToBase(t.QuantityUsed), nil
}

// WasteVariance returns actual minus allowed waste when both are recorded.
// Positive values mean more loss than planned.
func (t *TransformationInput) WasteVariance() *decimal.Decimal {
	if t.WasteAllowance == nil || t.WasteActual == nil {
		return nil
	}
	variance := t.WasteActual.Sub(*t.WasteAllowance)
	return &variance
}
