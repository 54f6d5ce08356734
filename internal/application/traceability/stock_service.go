package traceability

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
)

// StockService answers current-stock queries from the event ledger
type StockService struct {
	scope  TransactionScope
	ledger *traceability.StockLedger
}

// NewStockService creates a StockService
func NewStockService(scope TransactionScope) *StockService {
	return &StockService{
		scope:  scope,
		ledger: traceability.NewStockLedger(),
	}
}

// CurrentStock recomputes a lot's stock from its full event history and
// lineage consumption. The transaction gives the computation a consistent
// snapshot; a concurrent append is either fully visible or not at all.
func (s *StockService) CurrentStock(ctx context.Context, companyID uuid.UUID, tlcCode string) (*StockResponse, error) {
	var response *StockResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		events, err := repos.EventRepo().FindByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		consumed, err := repos.LineageRepo().FindByParentLot(ctx, lot.ID)
		if err != nil {
			return err
		}

		computed, err := s.ledger.ComputeStock(lot, events, consumed)
		if err != nil {
			return err
		}

		response = &StockResponse{
			LotID:      lot.ID,
			TLCCode:    lot.TLCCode,
			Value:      computed.Value,
			BaseUnit:   computed.BaseUnit,
			Breakdown:  computed.Breakdown,
			IsNegative: computed.IsNegative,
			Cached:     lot.AvailableQuantity,
			EventCount: computed.EventCount,
		}
		return nil
	})
	return response, err
}
