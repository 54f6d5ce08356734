package traceability

import (
	"context"
	"errors"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationService compares ledger-derived stock against the cached
// quantity for lots and persists anomalies. It backs both the on-demand
// endpoint and the periodic sweep.
type ReconciliationService struct {
	scope          TransactionScope
	ledger         *traceability.StockLedger
	engine         *traceability.ReconciliationEngine
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewReconciliationService creates a ReconciliationService
func NewReconciliationService(scope TransactionScope, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		scope:  scope,
		ledger: traceability.NewStockLedger(),
		engine: traceability.NewReconciliationEngine(),
		logger: logger,
	}
}

// SetEventPublisher sets the publisher for anomaly detection events
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ReconcileLot grades one lot and persists an anomaly when the variance is
// abnormal. Emission is idempotent: an open anomaly already covering the
// same (lot, variance snapshot) is reused, never duplicated.
func (s *ReconciliationService) ReconcileLot(ctx context.Context, companyID uuid.UUID, tlcCode string) (*BalanceResponse, error) {
	var response *BalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		balance, anomalyID, err := s.reconcileOne(ctx, repos, lot)
		if err != nil {
			return err
		}
		r := ToBalanceResponse(*balance, anomalyID)
		response = &r
		return nil
	})
	return response, err
}

// SweepCompany reconciles every active lot of a company. Per-lot failures
// are collected rather than aborting the sweep: one lot with bad unit data
// must not hide variances on the others.
func (s *ReconciliationService) SweepCompany(ctx context.Context, companyID uuid.UUID) (*SweepResult, error) {
	result := &SweepResult{Failures: map[string]string{}}

	var lots []traceability.TraceabilityLot
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.LotRepo().FindActiveForCompany(ctx, companyID)
		if err != nil {
			return err
		}
		lots = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range lots {
		tlcCode := lots[i].TLCCode
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			// Reload inside this transaction for a fresh snapshot
			lot, err := repos.LotRepo().FindByID(ctx, lots[i].ID)
			if err != nil {
				return err
			}
			balance, anomalyID, err := s.reconcileOne(ctx, repos, lot)
			if err != nil {
				return err
			}
			result.LotsChecked++
			if balance.RequiresAnomaly() {
				if anomalyID != nil {
					result.AnomaliesOpened++
				} else {
					result.AnomaliesReused++
				}
			}
			return nil
		})
		if err != nil {
			result.Failures[tlcCode] = err.Error()
			if s.logger != nil {
				s.logger.Warn("reconciliation failed for lot",
					zap.String("tlc_code", tlcCode),
					zap.Error(err))
			}
		}
	}

	if len(result.Failures) == 0 {
		result.Failures = nil
	}
	return result, nil
}

// reconcileOne computes, grades, and (when needed) persists. Returns the
// anomaly ID only when a new anomaly was opened in this call.
func (s *ReconciliationService) reconcileOne(ctx context.Context, repos TransactionalRepositories, lot *traceability.TraceabilityLot) (*traceability.InventoryBalance, *uuid.UUID, error) {
	events, err := repos.EventRepo().FindByLot(ctx, lot.ID)
	if err != nil {
		return nil, nil, err
	}
	consumed, err := repos.LineageRepo().FindByParentLot(ctx, lot.ID)
	if err != nil {
		return nil, nil, err
	}
	computed, err := s.ledger.ComputeStock(lot, events, consumed)
	if err != nil {
		return nil, nil, err
	}

	balance := s.engine.Reconcile(lot, computed)
	if !balance.RequiresAnomaly() {
		return &balance, nil, nil
	}

	existing, err := repos.AnomalyRepo().FindOpenBySnapshotKey(ctx, lot.CompanyID, balance.SnapshotKey)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, nil, err
	}
	if existing != nil {
		return &balance, nil, nil
	}

	anomaly := traceability.NewInventoryAnomaly(lot.CompanyID, balance)
	if err := repos.AnomalyRepo().Save(ctx, anomaly); err != nil {
		return nil, nil, err
	}
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, anomaly.GetDomainEvents()...)
		anomaly.ClearDomainEvents()
	}
	return &balance, &anomaly.ID, nil
}

// ListAnomalies returns a page of the company's anomalies
func (s *ReconciliationService) ListAnomalies(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[AnomalyResponse], error) {
	var page *shared.Paginated[AnomalyResponse]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		anomalies, total, err := repos.AnomalyRepo().FindAllForCompany(ctx, companyID, filter)
		if err != nil {
			return err
		}
		responses := make([]AnomalyResponse, 0, len(anomalies))
		for i := range anomalies {
			responses = append(responses, ToAnomalyResponse(&anomalies[i]))
		}
		p := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
		page = &p
		return nil
	})
	return page, err
}

// ResolveAnomaly closes an open anomaly with an operator note
func (s *ReconciliationService) ResolveAnomaly(ctx context.Context, companyID, anomalyID uuid.UUID, note string) (*AnomalyResponse, error) {
	var response *AnomalyResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		anomaly, err := repos.AnomalyRepo().FindByID(ctx, anomalyID)
		if err != nil {
			return err
		}
		if anomaly.CompanyID != companyID {
			return shared.ErrNotFound
		}
		if err := anomaly.Resolve(note); err != nil {
			return err
		}
		if err := repos.AnomalyRepo().Save(ctx, anomaly); err != nil {
			return err
		}
		r := ToAnomalyResponse(anomaly)
		response = &r
		return nil
	})
	return response, err
}
