package traceability

import (
	"time"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the traceability domain
const (
	DomainEventLotCreated        = "traceability.lot.created"
	DomainEventLotDepleted       = "traceability.lot.depleted"
	DomainEventLotRecalled       = "traceability.lot.recalled"
	DomainEventCTESubmitted      = "traceability.cte.submitted"
	DomainEventCTECorrected      = "traceability.cte.corrected"
	DomainEventAnomalyDetected   = "traceability.anomaly.detected"
	DomainEventLineageEdgeLinked = "traceability.lineage.linked"
)

// LotCreatedEvent is emitted when a traceability lot is created
type LotCreatedEvent struct {
	shared.BaseDomainEvent
	TLCCode          string          `json:"tlcCode"`
	ProductID        uuid.UUID       `json:"productId"`
	ProductionDate   time.Time       `json:"productionDate"`
	OriginalQuantity decimal.Decimal `json:"originalQuantity"`
	Unit             string          `json:"unit"`
}

// NewLotCreatedEvent creates a new LotCreatedEvent
func NewLotCreatedEvent(lot *TraceabilityLot) *LotCreatedEvent {
	return &LotCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(DomainEventLotCreated, "TraceabilityLot", lot.ID, lot.CompanyID),
		TLCCode:          lot.TLCCode,
		ProductID:        lot.ProductID,
		ProductionDate:   lot.ProductionDate,
		OriginalQuantity: lot.OriginalQuantity,
		Unit:             lot.Unit,
	}
}

// LotDepletedEvent is emitted when a lot's derived quantity reaches zero or below
type LotDepletedEvent struct {
	shared.BaseDomainEvent
	TLCCode           string          `json:"tlcCode"`
	AvailableQuantity decimal.Decimal `json:"availableQuantity"`
}

// NewLotDepletedEvent creates a new LotDepletedEvent
func NewLotDepletedEvent(lot *TraceabilityLot, remaining decimal.Decimal) *LotDepletedEvent {
	return &LotDepletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(DomainEventLotDepleted, "TraceabilityLot", lot.ID, lot.CompanyID),
		TLCCode:           lot.TLCCode,
		AvailableQuantity: remaining,
	}
}

// LotRecalledEvent is emitted when a lot enters the recalled state
type LotRecalledEvent struct {
	shared.BaseDomainEvent
	TLCCode string `json:"tlcCode"`
}

// NewLotRecalledEvent creates a new LotRecalledEvent
func NewLotRecalledEvent(lot *TraceabilityLot) *LotRecalledEvent {
	return &LotRecalledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(DomainEventLotRecalled, "TraceabilityLot", lot.ID, lot.CompanyID),
		TLCCode:         lot.TLCCode,
	}
}

// CTESubmittedEvent is emitted when a tracking event transitions to submitted
type CTESubmittedEvent struct {
	shared.BaseDomainEvent
	LotID        uuid.UUID       `json:"lotId"`
	TrackingType EventType       `json:"trackingType"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	IsCorrection bool            `json:"isCorrection"`
}

// NewCTESubmittedEvent creates a new CTESubmittedEvent
func NewCTESubmittedEvent(event *TrackingEvent) *CTESubmittedEvent {
	return &CTESubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(DomainEventCTESubmitted, "TrackingEvent", event.ID, event.CompanyID),
		LotID:           event.LotID,
		TrackingType:    event.EventType,
		Quantity:        event.QuantityProcessed,
		Unit:            event.Unit,
		IsCorrection:    event.IsCorrection(),
	}
}

// AnomalyDetectedEvent is emitted when reconciliation opens a new anomaly
type AnomalyDetectedEvent struct {
	shared.BaseDomainEvent
	LotID              uuid.UUID       `json:"lotId"`
	Flag               string          `json:"flag"`
	Severity           string          `json:"severity"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
}

// NewAnomalyDetectedEvent creates a new AnomalyDetectedEvent
func NewAnomalyDetectedEvent(anomaly *InventoryAnomaly) *AnomalyDetectedEvent {
	return &AnomalyDetectedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(DomainEventAnomalyDetected, "InventoryAnomaly", anomaly.ID, anomaly.CompanyID),
		LotID:              anomaly.LotID,
		Flag:               string(anomaly.Flag),
		Severity:           string(anomaly.Severity),
		VariancePercentage: anomaly.VariancePercentage,
	}
}
