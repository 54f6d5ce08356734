package traceability

import (
	"time"

	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransformationInputRequest declares one parent lot consumed by a
// transformation event.
type TransformationInputRequest struct {
	ParentTLCCode  string           `json:"parentTlcCode" binding:"required"`
	QuantityUsed   decimal.Decimal  `json:"quantityUsed" binding:"required"`
	Unit           string           `json:"unit" binding:"required"`
	WasteAllowance *decimal.Decimal `json:"wasteAllowance,omitempty"`
	WasteActual    *decimal.Decimal `json:"wasteActual,omitempty"`
	WasteReason    string           `json:"wasteReason,omitempty"`
}

// SubmitEventRequest is a CTE submission. KDEFields carries the event's key
// data elements; Inputs is required for transformation events.
type SubmitEventRequest struct {
	TLCCode           string                       `json:"tlcCode" binding:"required"`
	FacilityID        uuid.UUID                    `json:"facilityId" binding:"required"`
	EventType         string                       `json:"eventType" binding:"required"`
	EventDate         time.Time                    `json:"eventDate" binding:"required"`
	QuantityProcessed decimal.Decimal              `json:"quantityProcessed" binding:"required"`
	Unit              string                       `json:"unit" binding:"required"`
	Temperature       *decimal.Decimal             `json:"temperature,omitempty"`
	ResponsiblePerson string                       `json:"responsiblePerson,omitempty"`
	KDEFields         map[string]any               `json:"kdeFields,omitempty"`
	Inputs            []TransformationInputRequest `json:"inputs,omitempty"`
	CorrectsEventID   *uuid.UUID                   `json:"correctsEventId,omitempty"`
	IdempotencyKey    string                       `json:"idempotencyKey,omitempty"`
}

// SubmitEventResponse reports a successful submission
type SubmitEventResponse struct {
	EventID           uuid.UUID                            `json:"eventId"`
	Status            string                               `json:"status"`
	LotID             uuid.UUID                            `json:"lotId"`
	AvailableQuantity decimal.Decimal                      `json:"availableQuantity"`
	BaseUnit          string                               `json:"baseUnit"`
	Warnings          []traceability.KDEValidationIssue    `json:"warnings,omitempty"`
	CompletenessScore float64                              `json:"completenessScore"`
	Duplicate         bool                                 `json:"duplicate,omitempty"`
}

// CreateLotRequest registers a new traceability lot
type CreateLotRequest struct {
	TLCCode          string          `json:"tlcCode" binding:"required"`
	ProductID        uuid.UUID       `json:"productId" binding:"required"`
	FacilityID       uuid.UUID       `json:"facilityId" binding:"required"`
	ProductionDate   time.Time       `json:"productionDate" binding:"required"`
	OriginalQuantity decimal.Decimal `json:"originalQuantity" binding:"required"`
	Unit             string          `json:"unit" binding:"required"`
}

// LotResponse is the API view of a traceability lot
type LotResponse struct {
	ID                uuid.UUID       `json:"id"`
	TLCCode           string          `json:"tlcCode"`
	ProductID         uuid.UUID       `json:"productId"`
	FacilityID        uuid.UUID       `json:"facilityId"`
	ProductionDate    time.Time       `json:"productionDate"`
	OriginalQuantity  decimal.Decimal `json:"originalQuantity"`
	Unit              string          `json:"unit"`
	AvailableQuantity decimal.Decimal `json:"availableQuantity"`
	Status            string          `json:"status"`
	ExpiryDate        *time.Time      `json:"expiryDate,omitempty"`
	ExpiryStatus      string          `json:"expiryStatus"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToLotResponse maps a lot and its expiry assessment to the API view
func ToLotResponse(lot *traceability.TraceabilityLot, expiry traceability.ExpiryAssessment) LotResponse {
	return LotResponse{
		ID:                lot.ID,
		TLCCode:           lot.TLCCode,
		ProductID:         lot.ProductID,
		FacilityID:        lot.FacilityID,
		ProductionDate:    lot.ProductionDate,
		OriginalQuantity:  lot.OriginalQuantity,
		Unit:              lot.Unit,
		AvailableQuantity: lot.AvailableQuantity,
		Status:            string(lot.Status),
		ExpiryDate:        lot.ExpiryDate,
		ExpiryStatus:      string(expiry.Status),
		Version:           lot.Version,
		CreatedAt:         lot.CreatedAt,
	}
}

// TrackingEventResponse is the API view of a tracking event
type TrackingEventResponse struct {
	ID                uuid.UUID        `json:"id"`
	LotID             uuid.UUID        `json:"lotId"`
	FacilityID        uuid.UUID        `json:"facilityId"`
	EventType         string           `json:"eventType"`
	EventDate         time.Time        `json:"eventDate"`
	QuantityProcessed decimal.Decimal  `json:"quantityProcessed"`
	Unit              string           `json:"unit"`
	Temperature       *decimal.Decimal `json:"temperature,omitempty"`
	ResponsiblePerson string           `json:"responsiblePerson,omitempty"`
	Status            string           `json:"status"`
	SupersededBy      *uuid.UUID       `json:"supersededBy,omitempty"`
	Corrects          *uuid.UUID       `json:"corrects,omitempty"`
	KDEValues         map[string]any   `json:"kdeValues,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// ToTrackingEventResponse maps a tracking event to the API view
func ToTrackingEventResponse(event *traceability.TrackingEvent) TrackingEventResponse {
	values, _ := event.KDEValues()
	return TrackingEventResponse{
		ID:                event.ID,
		LotID:             event.LotID,
		FacilityID:        event.FacilityID,
		EventType:         string(event.EventType),
		EventDate:         event.EventDate,
		QuantityProcessed: event.QuantityProcessed,
		Unit:              event.Unit,
		Temperature:       event.Temperature,
		ResponsiblePerson: event.ResponsiblePerson,
		Status:            string(event.Status),
		SupersededBy:      event.SupersededBy,
		Corrects:          event.Corrects,
		KDEValues:         values,
		CreatedAt:         event.CreatedAt,
	}
}

// StockResponse is the API view of a ledger computation
type StockResponse struct {
	LotID      uuid.UUID                  `json:"lotId"`
	TLCCode    string                     `json:"tlcCode"`
	Value      decimal.Decimal            `json:"value"`
	BaseUnit   string                     `json:"baseUnit"`
	Breakdown  map[string]decimal.Decimal `json:"breakdown"`
	IsNegative bool                       `json:"isNegative"`
	Cached     decimal.Decimal            `json:"cachedQuantity"`
	EventCount int                        `json:"eventCount"`
}

// LineageNodeResponse is one node of an ancestry or descendants result
type LineageNodeResponse struct {
	LotID   uuid.UUID `json:"lotId"`
	TLCCode string    `json:"tlcCode,omitempty"`
	Depth   int       `json:"depth"`
	Path    string    `json:"path"`
}

// LineageEdgeResponse is one direct parent or child edge
type LineageEdgeResponse struct {
	EdgeID        uuid.UUID        `json:"edgeId"`
	ParentLotID   uuid.UUID        `json:"parentLotId"`
	ChildLotID    uuid.UUID        `json:"childLotId"`
	QuantityUsed  decimal.Decimal  `json:"quantityUsed"`
	Unit          string           `json:"unit"`
	WasteActual   *decimal.Decimal `json:"wasteActual,omitempty"`
	WasteVariance *decimal.Decimal `json:"wasteVariance,omitempty"`
}

// ToLineageEdgeResponse maps a transformation edge to the API view
func ToLineageEdgeResponse(edge *traceability.TransformationInput) LineageEdgeResponse {
	return LineageEdgeResponse{
		EdgeID:        edge.ID,
		ParentLotID:   edge.ParentLotID,
		ChildLotID:    edge.ChildLotID,
		QuantityUsed:  edge.QuantityUsed,
		Unit:          edge.Unit,
		WasteActual:   edge.WasteActual,
		WasteVariance: edge.WasteVariance(),
	}
}

// BalanceResponse is the API view of a reconciliation result
type BalanceResponse struct {
	LotID               uuid.UUID       `json:"lotId"`
	TLCCode             string          `json:"tlcCode"`
	TotalInput          decimal.Decimal `json:"totalInput"`
	TotalOutput         decimal.Decimal `json:"totalOutput"`
	TotalLoss           decimal.Decimal `json:"totalLoss"`
	Expected            decimal.Decimal `json:"expected"`
	Actual              decimal.Decimal `json:"actual"`
	Variance            decimal.Decimal `json:"variance"`
	VariancePercentage  decimal.Decimal `json:"variancePercentage"`
	IsShortage          bool            `json:"isShortage"`
	Flag                string          `json:"flag"`
	Severity            string          `json:"severity"`
	ComplianceDeduction int             `json:"complianceDeduction"`
	Recommendation      string          `json:"recommendation"`
	AnomalyID           *uuid.UUID      `json:"anomalyId,omitempty"`
}

// ToBalanceResponse maps a graded balance to the API view
func ToBalanceResponse(balance traceability.InventoryBalance, anomalyID *uuid.UUID) BalanceResponse {
	return BalanceResponse{
		LotID:               balance.LotID,
		TLCCode:             balance.TLCCode,
		TotalInput:          balance.TotalInput,
		TotalOutput:         balance.TotalOutput,
		TotalLoss:           balance.TotalLoss,
		Expected:            balance.Expected,
		Actual:              balance.Actual,
		Variance:            balance.Variance,
		VariancePercentage:  balance.VariancePercentage,
		IsShortage:          balance.IsShortage,
		Flag:                string(balance.Flag),
		Severity:            string(balance.Severity),
		ComplianceDeduction: balance.ComplianceDeduction,
		Recommendation:      balance.Recommendation,
		AnomalyID:           anomalyID,
	}
}

// AnomalyResponse is the API view of a persisted anomaly
type AnomalyResponse struct {
	ID                 uuid.UUID       `json:"id"`
	LotID              uuid.UUID       `json:"lotId"`
	TLCCode            string          `json:"tlcCode"`
	Flag               string          `json:"flag"`
	Severity           string          `json:"severity"`
	Expected           decimal.Decimal `json:"expected"`
	Actual             decimal.Decimal `json:"actual"`
	Variance           decimal.Decimal `json:"variance"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
	Deduction          int             `json:"deduction"`
	Recommendation     string          `json:"recommendation"`
	Status             string          `json:"status"`
	ResolvedAt         *time.Time      `json:"resolvedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// ToAnomalyResponse maps an anomaly to the API view
func ToAnomalyResponse(anomaly *traceability.InventoryAnomaly) AnomalyResponse {
	return AnomalyResponse{
		ID:                 anomaly.ID,
		LotID:              anomaly.LotID,
		TLCCode:            anomaly.TLCCode,
		Flag:               string(anomaly.Flag),
		Severity:           string(anomaly.Severity),
		Expected:           anomaly.Expected,
		Actual:             anomaly.Actual,
		Variance:           anomaly.Variance,
		VariancePercentage: anomaly.VariancePercentage,
		Deduction:          anomaly.Deduction,
		Recommendation:     anomaly.Recommendation,
		Status:             string(anomaly.Status),
		ResolvedAt:         anomaly.ResolvedAt,
		CreatedAt:          anomaly.CreatedAt,
	}
}

// SweepResult summarizes a reconciliation sweep over a company's active lots
type SweepResult struct {
	LotsChecked     int               `json:"lotsChecked"`
	AnomaliesOpened int               `json:"anomaliesOpened"`
	AnomaliesReused int               `json:"anomaliesReused"`
	Failures        map[string]string `json:"failures,omitempty"` // TLC code -> error
}
