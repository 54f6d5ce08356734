package traceability

import (
	"fmt"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// StockComputation is the ledger-derived stock picture for one lot. Value is
// in base units. Negative values are legitimate output: they mean more was
// shipped or consumed than the ledger ever recorded coming in, and must be
// surfaced rather than clamped.
type StockComputation struct {
	Value      decimal.Decimal            `json:"value"`
	BaseUnit   string                     `json:"baseUnit"`
	Breakdown  map[string]decimal.Decimal `json:"breakdown"`
	IsNegative bool                       `json:"isNegative"`
	EventCount int                        `json:"eventCount"`
}

// StockLedger derives a lot's on-hand quantity from its event history. The
// computation is pure over its inputs; persistence hands it a consistent
// snapshot of events and lineage edges read in one transaction.
type StockLedger struct{}

// NewStockLedger creates a stock ledger
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// ComputeStock sums the lot's ledger:
//
//	production baseline
//	+ every submitted INPUT event (harvest, receiving family, returns)
//	- every submitted OUTPUT event (shipping family, disposal family)
//	- consumption recorded on lineage edges where the lot is a parent
//
// Corrected events are superseded history and contribute nothing; their
// correction events carry the effective quantities. Transformation events
// are neutral on the lot they are recorded against because the produced
// quantity is already the child lot's baseline.
//
// Every quantity is unit-normalized before summing. A conversion failure on
// any term aborts the whole computation: a dropped term would silently
// misstate a regulatory quantity.
func (s *StockLedger) ComputeStock(
	lot *TraceabilityLot,
	events []TrackingEvent,
	consumedAsParent []TransformationInput,
) (*StockComputation, error) {
	if lot == nil {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot is required for stock computation")
	}

	breakdown := make(map[string]decimal.Decimal)

	baseline, err := lot.BaselineQuantity()
	if err != nil {
		return nil, fmt.Errorf("stock computation aborted for lot %s: baseline: %w", lot.TLCCode, err)
	}
	breakdown[FamilyProduction] = baseline
	total := baseline

	counted := 0
	for i := range events {
		event := &events[i]
		if !event.IsSubmitted() {
			continue
		}

		direction := event.Direction()
		if direction == DirectionNeutral {
			counted++
			continue
		}

		unit, err := valueobject.ResolveUnit(event.Unit)
		if err != nil {
			return nil, fmt.Errorf("stock computation aborted for lot %s: event %s: %w", lot.TLCCode, event.ID, err)
		}
		normalized := unit.ConvertToBase(event.QuantityProcessed)

		family := event.EventType.Family()
		switch direction {
		case DirectionInput:
			total = total.Add(normalized)
			breakdown[family] = breakdown[family].Add(normalized)
		case DirectionOutput:
			total = total.Sub(normalized)
			breakdown[family] = breakdown[family].Sub(normalized)
		}
		counted++
	}

	for i := range consumedAsParent {
		edge := &consumedAsParent[i]
		used, err := edge.QuantityUsedInBase()
		if err != nil {
			return nil, fmt.Errorf("stock computation aborted for lot %s: lineage edge %s: %w", lot.TLCCode, edge.ID, err)
		}
		total = total.Sub(used)
		breakdown[FamilyConsumption] = breakdown[FamilyConsumption].Sub(used)
	}

	return &StockComputation{
		Value:      total,
		BaseUnit:   valueobject.BaseUnitCode,
		Breakdown:  breakdown,
		IsNegative: total.IsNegative(),
		EventCount: counted,
	}, nil
}

// ProjectedStock computes what the lot's stock would be after applying one
// additional event. It is the check half of the check-then-append guard on
// shipment submissions.
func (s *StockLedger) ProjectedStock(
	lot *TraceabilityLot,
	events []TrackingEvent,
	consumedAsParent []TransformationInput,
	candidate *TrackingEvent,
) (decimal.Decimal, error) {
	current, err := s.ComputeStock(lot, events, consumedAsParent)
	if err != nil {
		return decimal.Zero, err
	}

	if candidate == nil || candidate.Direction() == DirectionNeutral {
		return current.Value, nil
	}

	unit, err := valueobject.ResolveUnit(candidate.Unit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stock projection aborted for lot %s: %w", lot.TLCCode, err)
	}
	normalized := unit.ConvertToBase(candidate.QuantityProcessed)

	if candidate.Direction() == DirectionInput {
		return current.Value.Add(normalized), nil
	}
	return current.Value.Sub(normalized), nil
}
