package traceability

import (
	"encoding/json"
	"time"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a critical tracking event in the FSMA 204 vocabulary
type EventType string

const (
	EventTypeHarvest        EventType = "harvest"
	EventTypeCooling        EventType = "cooling"
	EventTypeInitialPacking EventType = "initial_packing"

	// Receiving family
	EventTypeReceiving            EventType = "receiving"
	EventTypeReceivingDistributor EventType = "receiving_distributor"
	EventTypeReceivingWarehouse   EventType = "receiving_warehouse"
	EventTypeFirstReceiving       EventType = "first_receiving"

	// Shipping family
	EventTypeShipping            EventType = "shipping"
	EventTypeShippingDistributor EventType = "shipping_distributor"
	EventTypeDispatch            EventType = "dispatch"

	EventTypeTransformation EventType = "transformation"

	// Disposal family
	EventTypeDisposal    EventType = "disposal"
	EventTypeWaste       EventType = "waste"
	EventTypeDestruction EventType = "destruction"

	EventTypeReturn EventType = "return"
)

// EventDirection classifies how an event type affects a lot's on-hand quantity
type EventDirection string

const (
	// DirectionInput adds to the lot's quantity
	DirectionInput EventDirection = "INPUT"
	// DirectionOutput subtracts from the lot's quantity
	DirectionOutput EventDirection = "OUTPUT"
	// DirectionNeutral leaves the quantity unchanged (process events; the
	// transformation CTE is neutral on its own lot because the produced
	// quantity is the lot's production baseline and parent consumption is
	// accounted through lineage edges)
	DirectionNeutral EventDirection = "NEUTRAL"
)

// eventDirections is the single exhaustive classification of every event
// type family. The stock ledger iterates this table; a new event type that
// is added here is automatically accounted. A type missing from this table
// is invalid, never silently neutral.
var eventDirections = map[EventType]EventDirection{
	EventTypeHarvest:        DirectionInput,
	EventTypeCooling:        DirectionNeutral,
	EventTypeInitialPacking: DirectionNeutral,

	EventTypeReceiving:            DirectionInput,
	EventTypeReceivingDistributor: DirectionInput,
	EventTypeReceivingWarehouse:   DirectionInput,
	EventTypeFirstReceiving:       DirectionInput,

	EventTypeShipping:            DirectionOutput,
	EventTypeShippingDistributor: DirectionOutput,
	EventTypeDispatch:            DirectionOutput,

	EventTypeTransformation: DirectionNeutral,

	EventTypeDisposal:    DirectionOutput,
	EventTypeWaste:       DirectionOutput,
	EventTypeDestruction: DirectionOutput,

	EventTypeReturn: DirectionInput,
}

// breakdownFamilies groups event types into the reporting families the
// stock ledger breaks a computation down by.
var breakdownFamilies = map[EventType]string{
	EventTypeHarvest:              FamilyHarvest,
	EventTypeReceiving:            FamilyReceiving,
	EventTypeReceivingDistributor: FamilyReceiving,
	EventTypeReceivingWarehouse:   FamilyReceiving,
	EventTypeFirstReceiving:       FamilyReceiving,
	EventTypeReturn:               FamilyReturns,
	EventTypeShipping:             FamilyShipping,
	EventTypeShippingDistributor:  FamilyShipping,
	EventTypeDispatch:             FamilyShipping,
	EventTypeDisposal:             FamilyDisposal,
	EventTypeWaste:                FamilyDisposal,
	EventTypeDestruction:          FamilyDisposal,
}

// Breakdown family names used by the stock ledger
const (
	FamilyProduction  = "production"
	FamilyHarvest     = "harvest"
	FamilyReceiving   = "receiving"
	FamilyReturns     = "returns"
	FamilyShipping    = "shipping"
	FamilyDisposal    = "disposal"
	FamilyConsumption = "transformation_consumption"
)

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// IsValid returns true if the event type belongs to the fixed vocabulary
func (t EventType) IsValid() bool {
	_, ok := eventDirections[t]
	return ok
}

// Direction returns how this event type affects on-hand quantity
func (t EventType) Direction() EventDirection {
	return eventDirections[t]
}

// Family returns the reporting family for this event type, or its own name
// for process events outside the quantity families.
func (t EventType) Family() string {
	if family, ok := breakdownFamilies[t]; ok {
		return family
	}
	return string(t)
}

// RequiresTemperature returns true for event types where a missing
// temperature is a hard validation failure.
func (t EventType) RequiresTemperature() bool {
	return t == EventTypeCooling || t == EventTypeInitialPacking
}

// AllEventTypes returns the complete event type vocabulary
func AllEventTypes() []EventType {
	types := make([]EventType, 0, len(eventDirections))
	for t := range eventDirections {
		types = append(types, t)
	}
	return types
}

// EventStatus represents the lifecycle state of a tracking event
type EventStatus string

const (
	// EventStatusDraft is the only state where in-place edits are allowed
	EventStatusDraft EventStatus = "draft"
	// EventStatusSubmitted is terminal for mutation; the event is now an
	// immutable regulatory fact
	EventStatusSubmitted EventStatus = "submitted"
	// EventStatusCorrected marks a submitted event that has been logically
	// superseded by a correction event. The row itself is never edited
	// beyond the supersession pointer.
	EventStatusCorrected EventStatus = "corrected"
)

// TrackingEvent is a critical tracking event (CTE) recorded against a
// traceability lot. Events are append-only: once submitted they are never
// edited in place, and corrections are new events that supersede the
// original while both remain queryable for audit.
type TrackingEvent struct {
	shared.BaseEntity
	CompanyID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_tracking_event_company"`
	LotID             uuid.UUID        `gorm:"type:uuid;not null;index:idx_tracking_event_lot"`
	FacilityID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	EventType         EventType        `gorm:"type:varchar(30);not null;index"`
	EventDate         time.Time        `gorm:"type:timestamptz;not null;index"`
	QuantityProcessed decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Unit              string           `gorm:"type:varchar(20);not null"`
	Temperature       *decimal.Decimal `gorm:"type:decimal(6,2)"` // Celsius, cooling/packing events
	ResponsiblePerson string           `gorm:"type:varchar(200)"`
	Status            EventStatus      `gorm:"type:varchar(20);not null;default:'draft';index"`
	SupersededBy      *uuid.UUID       `gorm:"type:uuid;index"` // Correction event that replaces this one
	Corrects          *uuid.UUID       `gorm:"type:uuid;index"` // Original event this one corrects
	KDEPayload        string           `gorm:"type:jsonb"`      // Key data elements as captured at submission
}

// TableName returns the table name for GORM
func (TrackingEvent) TableName() string {
	return "tracking_events"
}

// NewTrackingEvent creates a draft tracking event
func NewTrackingEvent(
	companyID, lotID, facilityID uuid.UUID,
	eventType EventType,
	eventDate time.Time,
	quantity decimal.Decimal,
	unit string,
) (*TrackingEvent, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if lotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot ID cannot be empty")
	}
	if facilityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FACILITY", "Facility ID cannot be empty")
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Unknown tracking event type")
	}
	if eventDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_EVENT_DATE", "Event date is required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity processed cannot be negative")
	}

	return &TrackingEvent{
		BaseEntity:        shared.NewBaseEntity(),
		CompanyID:         companyID,
		LotID:             lotID,
		FacilityID:        facilityID,
		EventType:         eventType,
		EventDate:         eventDate,
		QuantityProcessed: quantity,
		Unit:              unit,
		Status:            EventStatusDraft,
		KDEPayload:        "{}",
	}, nil
}

// WithTemperature sets the recorded temperature (draft only)
func (e *TrackingEvent) WithTemperature(temp decimal.Decimal) error {
	if e.Status != EventStatusDraft {
		return shared.ErrEventImmutable
	}
	e.Temperature = &temp
	return nil
}

// WithResponsiblePerson sets the responsible person (draft only)
func (e *TrackingEvent) WithResponsiblePerson(name string) error {
	if e.Status != EventStatusDraft {
		return shared.ErrEventImmutable
	}
	e.ResponsiblePerson = name
	return nil
}

// SetKDEValues captures the key data elements for this event (draft only)
func (e *TrackingEvent) SetKDEValues(values map[string]any) error {
	if e.Status != EventStatusDraft {
		return shared.ErrEventImmutable
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return shared.NewDomainError("INVALID_KDE_PAYLOAD", "Key data elements could not be encoded")
	}
	e.KDEPayload = string(payload)
	return nil
}

// KDEValues decodes the captured key data elements
func (e *TrackingEvent) KDEValues() (map[string]any, error) {
	values := make(map[string]any)
	if e.KDEPayload == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(e.KDEPayload), &values); err != nil {
		return nil, shared.NewDomainError("INVALID_KDE_PAYLOAD", "Stored key data elements could not be decoded")
	}
	return values, nil
}

// Submit transitions the event from draft to submitted. Submitted is
// terminal for mutation.
func (e *TrackingEvent) Submit() error {
	if e.Status != EventStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft events can be submitted")
	}
	e.Status = EventStatusSubmitted
	e.UpdatedAt = time.Now()
	return nil
}

// MarkCorrected records that a correction event supersedes this one.
// This is the only permitted transition out of submitted, and it never
// removes the original row.
func (e *TrackingEvent) MarkCorrected(correctionID uuid.UUID) error {
	if e.Status != EventStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", "Only submitted events can be corrected")
	}
	if correctionID == uuid.Nil {
		return shared.NewDomainError("INVALID_CORRECTION", "Correction event ID cannot be empty")
	}
	e.Status = EventStatusCorrected
	e.SupersededBy = &correctionID
	e.UpdatedAt = time.Now()
	return nil
}

// AsCorrectionOf links this draft event to the submitted event it corrects
func (e *TrackingEvent) AsCorrectionOf(originalID uuid.UUID) error {
	if e.Status != EventStatusDraft {
		return shared.ErrEventImmutable
	}
	if originalID == uuid.Nil {
		return shared.NewDomainError("INVALID_CORRECTION", "Original event ID cannot be empty")
	}
	e.Corrects = &originalID
	return nil
}

// IsSubmitted returns true when the event is an effective (non-superseded) fact
func (e *TrackingEvent) IsSubmitted() bool {
	return e.Status == EventStatusSubmitted
}

// IsCorrection returns true when this event supersedes another
func (e *TrackingEvent) IsCorrection() bool {
	return e.Corrects != nil
}

// Direction returns how this event affects its lot's on-hand quantity
func (e *TrackingEvent) Direction() EventDirection {
	return e.EventType.Direction()
}
