package traceability

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/catalog"
	"github.com/foodtrace/backend/internal/domain/traceability"
)

// TransactionScope provides transactional access to traceability repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Event submission depends on this: validate, append,
// insert lineage edges, and refresh the lot's derived quantity are one
// atomic unit, so a concurrent reader never observes a partial write.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all traceability repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - LotRepo: the TraceabilityLot aggregate; the cached derived quantity is
//     only ever written through this repository inside an Execute block.
//   - EventRepo: append-only; the only post-submit write is the supersession
//     pointer set when a correction lands.
//   - LineageRepo: transformation edges; cycle check and insert must share a
//     transaction or a concurrent insert could slip a cycle past the guard.
type TransactionalRepositories interface {
	LotRepo() traceability.LotRepository
	EventRepo() traceability.TrackingEventRepository
	LineageRepo() traceability.LineageRepository
	AnomalyRepo() traceability.AnomalyRepository
	ProductRepo() catalog.ProductRepository
}

// NoOpTransactionScope runs the function without a real transaction. Used in
// tests where repositories are in-memory fakes.
type NoOpTransactionScope struct {
	lotRepo     traceability.LotRepository
	eventRepo   traceability.TrackingEventRepository
	lineageRepo traceability.LineageRepository
	anomalyRepo traceability.AnomalyRepository
	productRepo catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	lotRepo traceability.LotRepository,
	eventRepo traceability.TrackingEventRepository,
	lineageRepo traceability.LineageRepository,
	anomalyRepo traceability.AnomalyRepository,
	productRepo catalog.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:     lotRepo,
		eventRepo:   eventRepo,
		lineageRepo: lineageRepo,
		anomalyRepo: anomalyRepo,
		productRepo: productRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the lot repository
func (s *NoOpTransactionScope) LotRepo() traceability.LotRepository { return s.lotRepo }

// EventRepo returns the tracking event repository
func (s *NoOpTransactionScope) EventRepo() traceability.TrackingEventRepository { return s.eventRepo }

// LineageRepo returns the lineage edge repository
func (s *NoOpTransactionScope) LineageRepo() traceability.LineageRepository { return s.lineageRepo }

// AnomalyRepo returns the anomaly repository
func (s *NoOpTransactionScope) AnomalyRepo() traceability.AnomalyRepository { return s.anomalyRepo }

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
