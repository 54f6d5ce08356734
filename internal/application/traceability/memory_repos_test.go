package traceability

import (
	"context"
	"strings"

	"github.com/foodtrace/backend/internal/domain/catalog"
	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
)

// In-memory repositories backing service tests. They store copies so tests
// observe only what Save/Append persisted, like a real database would.

type memLotRepo struct {
	lots map[uuid.UUID]traceability.TraceabilityLot
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: map[uuid.UUID]traceability.TraceabilityLot{}}
}

func (r *memLotRepo) FindByID(_ context.Context, id uuid.UUID) (*traceability.TraceabilityLot, error) {
	if lot, ok := r.lots[id]; ok {
		copied := lot
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memLotRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*traceability.TraceabilityLot, error) {
	lot, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return lot, nil
}

func (r *memLotRepo) FindByTLCCode(_ context.Context, companyID uuid.UUID, tlcCode string) (*traceability.TraceabilityLot, error) {
	for _, lot := range r.lots {
		if lot.CompanyID == companyID && strings.EqualFold(lot.TLCCode, tlcCode) {
			copied := lot
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLotRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]traceability.TraceabilityLot, error) {
	var out []traceability.TraceabilityLot
	for _, lot := range r.lots {
		if lot.CompanyID == companyID {
			out = append(out, lot)
		}
	}
	return out, nil
}

func (r *memLotRepo) FindActiveForCompany(_ context.Context, companyID uuid.UUID) ([]traceability.TraceabilityLot, error) {
	var out []traceability.TraceabilityLot
	for _, lot := range r.lots {
		if lot.CompanyID == companyID && lot.Status == traceability.LotStatusActive {
			out = append(out, lot)
		}
	}
	return out, nil
}

func (r *memLotRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	lots, err := r.FindAllForCompany(ctx, companyID, filter)
	return int64(len(lots)), err
}

func (r *memLotRepo) Save(_ context.Context, lot *traceability.TraceabilityLot) error {
	r.lots[lot.ID] = *lot
	return nil
}

func (r *memLotRepo) SaveWithLock(_ context.Context, lot *traceability.TraceabilityLot) error {
	stored, ok := r.lots[lot.ID]
	if ok && stored.Version != lot.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.lots[lot.ID] = *lot
	return nil
}

type memEventRepo struct {
	events map[uuid.UUID]traceability.TrackingEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[uuid.UUID]traceability.TrackingEvent{}}
}

func (r *memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*traceability.TrackingEvent, error) {
	if event, ok := r.events[id]; ok {
		copied := event
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memEventRepo) FindByLot(_ context.Context, lotID uuid.UUID) ([]traceability.TrackingEvent, error) {
	var out []traceability.TrackingEvent
	for _, event := range r.events {
		if event.LotID == lotID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memEventRepo) FindSubmittedByLot(ctx context.Context, lotID uuid.UUID) ([]traceability.TrackingEvent, error) {
	all, err := r.FindByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	var out []traceability.TrackingEvent
	for _, event := range all {
		if event.IsSubmitted() {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memEventRepo) FindByLotPaged(ctx context.Context, lotID uuid.UUID, _ shared.Filter) ([]traceability.TrackingEvent, int64, error) {
	events, err := r.FindByLot(ctx, lotID)
	return events, int64(len(events)), err
}

func (r *memEventRepo) CountSubmittedByLot(ctx context.Context, lotID uuid.UUID) (int64, error) {
	events, err := r.FindSubmittedByLot(ctx, lotID)
	return int64(len(events)), err
}

func (r *memEventRepo) Append(_ context.Context, event *traceability.TrackingEvent) error {
	if _, exists := r.events[event.ID]; exists {
		return shared.ErrAlreadyExists
	}
	r.events[event.ID] = *event
	return nil
}

func (r *memEventRepo) MarkSuperseded(_ context.Context, original *traceability.TrackingEvent) error {
	if _, ok := r.events[original.ID]; !ok {
		return shared.ErrNotFound
	}
	r.events[original.ID] = *original
	return nil
}

type memLineageRepo struct {
	edges []traceability.TransformationInput
}

func (r *memLineageRepo) FindByID(_ context.Context, id uuid.UUID) (*traceability.TransformationInput, error) {
	for i := range r.edges {
		if r.edges[i].ID == id {
			copied := r.edges[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLineageRepo) FindByChildLot(_ context.Context, childLotID uuid.UUID) ([]traceability.TransformationInput, error) {
	var out []traceability.TransformationInput
	for _, edge := range r.edges {
		if edge.ChildLotID == childLotID {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *memLineageRepo) FindByParentLot(_ context.Context, parentLotID uuid.UUID) ([]traceability.TransformationInput, error) {
	var out []traceability.TransformationInput
	for _, edge := range r.edges {
		if edge.ParentLotID == parentLotID {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *memLineageRepo) FindByTransformationEvent(_ context.Context, eventID uuid.UUID) ([]traceability.TransformationInput, error) {
	var out []traceability.TransformationInput
	for _, edge := range r.edges {
		if edge.TransformationEventID == eventID {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *memLineageRepo) Save(_ context.Context, edge *traceability.TransformationInput) error {
	r.edges = append(r.edges, *edge)
	return nil
}

type memAnomalyRepo struct {
	anomalies map[uuid.UUID]traceability.InventoryAnomaly
}

func newMemAnomalyRepo() *memAnomalyRepo {
	return &memAnomalyRepo{anomalies: map[uuid.UUID]traceability.InventoryAnomaly{}}
}

func (r *memAnomalyRepo) FindByID(_ context.Context, id uuid.UUID) (*traceability.InventoryAnomaly, error) {
	if anomaly, ok := r.anomalies[id]; ok {
		copied := anomaly
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memAnomalyRepo) FindOpenBySnapshotKey(_ context.Context, companyID uuid.UUID, snapshotKey string) (*traceability.InventoryAnomaly, error) {
	for _, anomaly := range r.anomalies {
		if anomaly.CompanyID == companyID && anomaly.SnapshotKey == snapshotKey && anomaly.Status == traceability.AnomalyStatusOpen {
			copied := anomaly
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAnomalyRepo) FindOpenByLot(_ context.Context, lotID uuid.UUID) ([]traceability.InventoryAnomaly, error) {
	var out []traceability.InventoryAnomaly
	for _, anomaly := range r.anomalies {
		if anomaly.LotID == lotID && anomaly.Status == traceability.AnomalyStatusOpen {
			out = append(out, anomaly)
		}
	}
	return out, nil
}

func (r *memAnomalyRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]traceability.InventoryAnomaly, int64, error) {
	var out []traceability.InventoryAnomaly
	for _, anomaly := range r.anomalies {
		if anomaly.CompanyID == companyID {
			out = append(out, anomaly)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memAnomalyRepo) Save(_ context.Context, anomaly *traceability.InventoryAnomaly) error {
	r.anomalies[anomaly.ID] = *anomaly
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[uuid.UUID]catalog.Product{}}
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if product, ok := r.products[id]; ok {
		copied := product
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*catalog.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (r *memProductRepo) FindByCode(_ context.Context, companyID uuid.UUID, code string) (*catalog.Product, error) {
	for _, product := range r.products {
		if product.CompanyID == companyID && strings.EqualFold(product.Code, code) {
			copied := product
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, product := range r.products {
		if product.CompanyID == companyID {
			out = append(out, product)
		}
	}
	return out, nil
}

func (r *memProductRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	products, err := r.FindAllForCompany(ctx, companyID, filter)
	return int64(len(products)), err
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = *product
	return nil
}

// fixture wires the fakes behind a NoOpTransactionScope
type fixture struct {
	companyID uuid.UUID
	lots      *memLotRepo
	events    *memEventRepo
	lineage   *memLineageRepo
	anomalies *memAnomalyRepo
	products  *memProductRepo
	scope     *NoOpTransactionScope
}

func newFixture() *fixture {
	lots := newMemLotRepo()
	events := newMemEventRepo()
	lineage := &memLineageRepo{}
	anomalies := newMemAnomalyRepo()
	products := newMemProductRepo()
	return &fixture{
		companyID: uuid.New(),
		lots:      lots,
		events:    events,
		lineage:   lineage,
		anomalies: anomalies,
		products:  products,
		scope:     NewNoOpTransactionScope(lots, events, lineage, anomalies, products),
	}
}
