package traceability

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
)

// LotService handles traceability lot lifecycle operations
type LotService struct {
	scope          TransactionScope
	expiration     *traceability.ExpirationCalculator
	eventPublisher shared.EventPublisher
}

// NewLotService creates a LotService
func NewLotService(scope TransactionScope) *LotService {
	return &LotService{
		scope:      scope,
		expiration: traceability.NewExpirationCalculator(),
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *LotService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateLot registers a new lot. The expiry date is derived from the
// product's shelf life at creation time; products without a shelf life
// produce exempt lots.
func (s *LotService) CreateLot(ctx context.Context, companyID uuid.UUID, req CreateLotRequest) (*LotResponse, error) {
	var response *LotResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if existing, err := repos.LotRepo().FindByTLCCode(ctx, companyID, req.TLCCode); err == nil && existing != nil {
			return shared.NewDomainError("TLC_TAKEN", "A lot with this traceability lot code already exists")
		}

		product, err := repos.ProductRepo().FindByIDForCompany(ctx, companyID, req.ProductID)
		if err != nil {
			return err
		}

		lot, err := traceability.NewTraceabilityLot(companyID, req.ProductID, req.FacilityID, req.TLCCode, req.ProductionDate, req.OriginalQuantity, req.Unit)
		if err != nil {
			return err
		}
		if expiry := s.expiration.ExpiryDate(req.ProductionDate, product.ShelfLifeDays); expiry != nil {
			lot.SetExpiryDate(*expiry)
		}

		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}
		s.publishLotEvents(ctx, lot)

		r := ToLotResponse(lot, s.expiration.Assess(lot.ExpiryDate))
		response = &r
		return nil
	})
	return response, err
}

// GetLot returns one lot by its traceability lot code
func (s *LotService) GetLot(ctx context.Context, companyID uuid.UUID, tlcCode string) (*LotResponse, error) {
	var response *LotResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		r := ToLotResponse(lot, s.expiration.Assess(lot.ExpiryDate))
		response = &r
		return nil
	})
	return response, err
}

// ListLots returns a page of the company's lots
func (s *LotService) ListLots(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[LotResponse], error) {
	var page *shared.Paginated[LotResponse]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lots, err := repos.LotRepo().FindAllForCompany(ctx, companyID, filter)
		if err != nil {
			return err
		}
		total, err := repos.LotRepo().CountForCompany(ctx, companyID, filter)
		if err != nil {
			return err
		}

		responses := make([]LotResponse, 0, len(lots))
		for i := range lots {
			responses = append(responses, ToLotResponse(&lots[i], s.expiration.Assess(lots[i].ExpiryDate)))
		}
		p := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
		page = &p
		return nil
	})
	return page, err
}

// RecallLot marks a lot and all of its descendants recalled. Contaminated
// input spreads downstream, so the recall follows child edges to the
// traversal cap.
func (s *LotService) RecallLot(ctx context.Context, companyID uuid.UUID, tlcCode string) (int, error) {
	recalled := 0
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}

		manager := traceability.NewLineageManager(repos.LineageRepo())
		descendants, err := manager.FullDescendants(ctx, lot.ID, traceability.DefaultMaxTraversalDepth)
		if err != nil {
			return err
		}

		targets := []*traceability.TraceabilityLot{lot}
		for _, node := range descendants {
			descendant, err := repos.LotRepo().FindByID(ctx, node.LotID)
			if err != nil {
				return err
			}
			targets = append(targets, descendant)
		}

		for _, target := range targets {
			if err := target.Recall(); err != nil {
				return err
			}
			if err := repos.LotRepo().SaveWithLock(ctx, target); err != nil {
				return err
			}
			s.publishLotEvents(ctx, target)
			recalled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return recalled, nil
}

// ArchiveLot retires a lot that never accumulated submitted events
func (s *LotService) ArchiveLot(ctx context.Context, companyID uuid.UUID, tlcCode string) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		submitted, err := repos.EventRepo().CountSubmittedByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		if err := lot.Archive(submitted); err != nil {
			return err
		}
		return repos.LotRepo().SaveWithLock(ctx, lot)
	})
}

func (s *LotService) publishLotEvents(ctx context.Context, lot *traceability.TraceabilityLot) {
	if s.eventPublisher == nil {
		return
	}
	events := lot.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	lot.ClearDomainEvents()
}
