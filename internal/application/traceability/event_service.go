package traceability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/shared/valueobject"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
)

const (
	// maxConflictRetries bounds the optimistic-lock retry loop on submission
	maxConflictRetries = 3
	// conflictBackoff is the pause between optimistic-lock retries
	conflictBackoff = 25 * time.Millisecond
	// idempotencyTTL is how long a processed submission key is remembered
	idempotencyTTL = 24 * time.Hour
)

// ValidationFailedError carries every finding from a rejected submission so
// the caller can render all problems at once instead of discovering them one
// resubmission at a time.
type ValidationFailedError struct {
	Issues          []traceability.KDEValidationIssue
	MissingRequired []string
}

// Error implements the error interface
func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("submission rejected with %d validation findings", len(e.Issues))
}

// EventService runs the CTE submission pipeline: KDE validation, temperature
// validation, expiration and lineage gates, then the atomic append that
// updates the lot's derived quantity.
type EventService struct {
	scope          TransactionScope
	kdeValidator   *traceability.KDEValidator
	tempValidator  *traceability.TemperatureValidator
	expiration     *traceability.ExpirationCalculator
	ledger         *traceability.StockLedger
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
}

// NewEventService creates an EventService
func NewEventService(scope TransactionScope) *EventService {
	return &EventService{
		scope:         scope,
		kdeValidator:  traceability.NewKDEValidator(),
		tempValidator: traceability.NewTemperatureValidator(),
		expiration:    traceability.NewExpirationCalculator(),
		ledger:        traceability.NewStockLedger(),
	}
}

// SetIdempotencyStore enables duplicate-submission protection
func (s *EventService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetEventPublisher sets the publisher for domain events
func (s *EventService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetExpirationCalculator overrides the clock-bound calculator (tests)
func (s *EventService) SetExpirationCalculator(calc *traceability.ExpirationCalculator) {
	s.expiration = calc
}

// SubmitEvent validates and durably appends one critical tracking event.
// The whole pipeline runs in a single transaction; a version conflict on the
// lot row retries the transaction a bounded number of times before
// surfacing the conflict.
func (s *EventService) SubmitEvent(ctx context.Context, companyID uuid.UUID, req SubmitEventRequest) (*SubmitEventResponse, error) {
	eventType := traceability.EventType(req.EventType)
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", fmt.Sprintf("%q is not a recognized tracking event type", req.EventType))
	}

	// Claim the key before the transaction. MarkProcessed is atomic, so two
	// simultaneous submissions with the same key get exactly one claim; the
	// loser replays the winner's outcome instead of committing a second event.
	reserved := false
	if s.idempotency != nil && req.IdempotencyKey != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return s.replayDuplicate(ctx, companyID, req.IdempotencyKey)
		}
		reserved = true
	}

	var response *SubmitEventResponse
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				if reserved {
					_ = s.idempotency.Release(ctx, req.IdempotencyKey)
				}
				return nil, ctx.Err()
			case <-time.After(conflictBackoff):
			}
		}

		response, err = s.submitOnce(ctx, companyID, eventType, req)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
	}
	if err != nil {
		if reserved {
			// A failed submission never burns its key
			_ = s.idempotency.Release(ctx, req.IdempotencyKey)
		}
		return nil, err
	}

	if reserved {
		_ = s.idempotency.SetResult(ctx, req.IdempotencyKey, response.EventID.String(), idempotencyTTL)
	}
	return response, nil
}

// replayDuplicate reconstructs the original submission's response for a
// request replayed with an already claimed idempotency key.
func (s *EventService) replayDuplicate(ctx context.Context, companyID uuid.UUID, key string) (*SubmitEventResponse, error) {
	stored, err := s.idempotency.GetResult(ctx, key)
	if err != nil {
		return nil, err
	}
	eventID, parseErr := uuid.Parse(stored)
	if stored == "" || parseErr != nil {
		// Claimed but no recorded outcome yet: the first submission is still
		// inside its transaction
		return nil, shared.NewDomainError("SUBMISSION_IN_FLIGHT",
			"A submission with this idempotency key is still being processed")
	}

	var response *SubmitEventResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		event, err := repos.EventRepo().FindByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event.CompanyID != companyID {
			return shared.ErrNotFound
		}
		lot, err := repos.LotRepo().FindByID(ctx, event.LotID)
		if err != nil {
			return err
		}
		response = &SubmitEventResponse{
			EventID:           event.ID,
			Status:            string(event.Status),
			LotID:             lot.ID,
			AvailableQuantity: lot.AvailableQuantity,
			BaseUnit:          valueobject.BaseUnitCode,
			Duplicate:         true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *EventService) submitOnce(ctx context.Context, companyID uuid.UUID, eventType traceability.EventType, req SubmitEventRequest) (*SubmitEventResponse, error) {
	var response *SubmitEventResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, req.TLCCode)
		if err != nil {
			return err
		}
		product, err := repos.ProductRepo().FindByIDForCompany(ctx, companyID, lot.ProductID)
		if err != nil {
			return err
		}

		failure := &ValidationFailedError{}
		warnings := []traceability.KDEValidationIssue{}

		kdeResult := s.kdeValidator.Validate(eventType, req.KDEFields)
		failure.Issues = append(failure.Issues, kdeResult.Errors...)
		failure.MissingRequired = kdeResult.MissingRequired
		warnings = append(warnings, kdeResult.Warnings...)

		tempResult := s.tempValidator.Validate(eventType, product, req.Temperature)
		failure.Issues = append(failure.Issues, tempResult.Errors...)
		warnings = append(warnings, tempResult.Warnings...)

		var parents []*traceability.TraceabilityLot
		if eventType == traceability.EventTypeTransformation {
			parents, err = s.gateTransformationInputs(ctx, repos, companyID, lot, req.Inputs, failure)
			if err != nil {
				return err
			}
		}

		if len(failure.Issues) > 0 {
			return failure
		}

		event, err := s.buildEvent(companyID, lot, eventType, req)
		if err != nil {
			return err
		}

		// Read the full ledger snapshot inside the transaction
		history, err := repos.EventRepo().FindByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		consumed, err := repos.LineageRepo().FindByParentLot(ctx, lot.ID)
		if err != nil {
			return err
		}

		if event.Direction() == traceability.DirectionOutput {
			projected, err := s.ledger.ProjectedStock(lot, history, consumed, event)
			if err != nil {
				return err
			}
			if projected.IsNegative() {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Lot %s holds %s kg; this event would remove more than is on hand", lot.TLCCode, lot.AvailableQuantity))
			}
		}

		if req.CorrectsEventID != nil {
			if err := s.supersedeOriginal(ctx, repos, lot, event, *req.CorrectsEventID, &history); err != nil {
				return err
			}
		}

		if err := event.Submit(); err != nil {
			return err
		}
		if err := repos.EventRepo().Append(ctx, event); err != nil {
			return err
		}

		if eventType == traceability.EventTypeTransformation {
			if err := s.linkAndConsumeParents(ctx, repos, companyID, lot, event, parents, req.Inputs); err != nil {
				return err
			}
		}

		history = append(history, *event)
		computed, err := s.ledger.ComputeStock(lot, history, consumed)
		if err != nil {
			return err
		}
		lot.RefreshAvailableQuantity(computed.Value)
		if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
			return err
		}

		s.publish(ctx, traceability.NewCTESubmittedEvent(event))
		s.publishLotEvents(ctx, lot)

		response = &SubmitEventResponse{
			EventID:           event.ID,
			Status:            string(event.Status),
			LotID:             lot.ID,
			AvailableQuantity: lot.AvailableQuantity,
			BaseUnit:          computed.BaseUnit,
			Warnings:          warnings,
			CompletenessScore: kdeResult.CompletenessScore,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// gateTransformationInputs enforces the transformation preconditions: at
// least one declared parent, every parent resolvable, consumable, and not
// past expiry. Parent problems are validation findings so the caller sees
// them alongside KDE and temperature findings.
func (s *EventService) gateTransformationInputs(
	ctx context.Context,
	repos TransactionalRepositories,
	companyID uuid.UUID,
	child *traceability.TraceabilityLot,
	inputs []TransformationInputRequest,
	failure *ValidationFailedError,
) ([]*traceability.TraceabilityLot, error) {
	if len(inputs) == 0 {
		failure.Issues = append(failure.Issues, traceability.KDEValidationIssue{
			Field: "inputs", Label: "Input lots", Severity: traceability.KDESeverityError,
			Message: "A transformation event must declare at least one input lot",
		})
		return nil, nil
	}

	parents := make([]*traceability.TraceabilityLot, 0, len(inputs))
	for _, input := range inputs {
		parent, err := repos.LotRepo().FindByTLCCode(ctx, companyID, input.ParentTLCCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				failure.Issues = append(failure.Issues, traceability.KDEValidationIssue{
					Field: "inputs", Label: "Input lots", Severity: traceability.KDESeverityError,
					Message: fmt.Sprintf("Input lot %s does not exist", input.ParentTLCCode),
				})
				continue
			}
			return nil, err
		}
		if parent.ID == child.ID {
			failure.Issues = append(failure.Issues, traceability.KDEValidationIssue{
				Field: "inputs", Label: "Input lots", Severity: traceability.KDESeverityError,
				Message: fmt.Sprintf("Lot %s cannot be its own input", parent.TLCCode),
			})
			continue
		}
		if !parent.IsConsumable() {
			failure.Issues = append(failure.Issues, traceability.KDEValidationIssue{
				Field: "inputs", Label: "Input lots", Severity: traceability.KDESeverityError,
				Message: fmt.Sprintf("Input lot %s is %s and cannot be consumed", parent.TLCCode, parent.Status),
			})
			continue
		}
		if !s.expiration.CanUseInCTE(parent.ExpiryDate) {
			failure.Issues = append(failure.Issues, traceability.KDEValidationIssue{
				Field: "inputs", Label: "Input lots", Severity: traceability.KDESeverityError,
				Message: fmt.Sprintf("Input lot %s expired on %s and cannot be used", parent.TLCCode, parent.ExpiryDate.Format("2006-01-02")),
			})
			continue
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

func (s *EventService) buildEvent(companyID uuid.UUID, lot *traceability.TraceabilityLot, eventType traceability.EventType, req SubmitEventRequest) (*traceability.TrackingEvent, error) {
	event, err := traceability.NewTrackingEvent(companyID, lot.ID, req.FacilityID, eventType, req.EventDate, req.QuantityProcessed, req.Unit)
	if err != nil {
		return nil, err
	}
	if req.Temperature != nil {
		if err := event.WithTemperature(*req.Temperature); err != nil {
			return nil, err
		}
	}
	if req.ResponsiblePerson != "" {
		if err := event.WithResponsiblePerson(req.ResponsiblePerson); err != nil {
			return nil, err
		}
	}
	if len(req.KDEFields) > 0 {
		if err := event.SetKDEValues(req.KDEFields); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// supersedeOriginal links the correction, marks the original corrected, and
// persists the supersession pointer. The in-memory history slice is patched
// so the recompute below sees the original as superseded.
func (s *EventService) supersedeOriginal(
	ctx context.Context,
	repos TransactionalRepositories,
	lot *traceability.TraceabilityLot,
	correction *traceability.TrackingEvent,
	originalID uuid.UUID,
	history *[]traceability.TrackingEvent,
) error {
	original, err := repos.EventRepo().FindByID(ctx, originalID)
	if err != nil {
		return err
	}
	if original.LotID != lot.ID {
		return shared.NewDomainError("INVALID_CORRECTION", "A correction must target an event on the same lot")
	}
	if err := correction.AsCorrectionOf(original.ID); err != nil {
		return err
	}
	if err := original.MarkCorrected(correction.ID); err != nil {
		return err
	}
	if err := repos.EventRepo().MarkSuperseded(ctx, original); err != nil {
		return err
	}
	for i := range *history {
		if (*history)[i].ID == original.ID {
			(*history)[i] = *original
		}
	}
	return nil
}

// linkAndConsumeParents inserts lineage edges with the cycle guard and
// recomputes each parent's derived quantity to reflect the new consumption.
// All of it shares the submission transaction.
func (s *EventService) linkAndConsumeParents(
	ctx context.Context,
	repos TransactionalRepositories,
	companyID uuid.UUID,
	child *traceability.TraceabilityLot,
	event *traceability.TrackingEvent,
	parents []*traceability.TraceabilityLot,
	inputs []TransformationInputRequest,
) error {
	manager := traceability.NewLineageManager(repos.LineageRepo())

	byTLC := make(map[string]*traceability.TraceabilityLot, len(parents))
	for _, parent := range parents {
		byTLC[parent.TLCCode] = parent
	}

	for _, input := range inputs {
		parent, ok := byTLC[input.ParentTLCCode]
		if !ok {
			continue
		}

		cycle, err := manager.WouldCreateCycle(ctx, parent.ID, child.ID)
		if err != nil {
			return err
		}
		if cycle {
			return shared.NewDomainError("LINEAGE_CYCLE",
				fmt.Sprintf("Linking %s as an input of %s would make a lot its own ancestor", parent.TLCCode, child.TLCCode))
		}

		edge, err := traceability.NewTransformationInput(companyID, child.ID, parent.ID, event.ID, input.QuantityUsed, input.Unit)
		if err != nil {
			return err
		}
		if input.WasteAllowance != nil || input.WasteActual != nil || input.WasteReason != "" {
			if err := edge.WithWaste(input.WasteAllowance, input.WasteActual, input.WasteReason); err != nil {
				return err
			}
		}
		if err := repos.LineageRepo().Save(ctx, edge); err != nil {
			return err
		}
	}

	for _, parent := range parents {
		history, err := repos.EventRepo().FindByLot(ctx, parent.ID)
		if err != nil {
			return err
		}
		consumed, err := repos.LineageRepo().FindByParentLot(ctx, parent.ID)
		if err != nil {
			return err
		}
		computed, err := s.ledger.ComputeStock(parent, history, consumed)
		if err != nil {
			return err
		}
		parent.RefreshAvailableQuantity(computed.Value)
		if err := repos.LotRepo().SaveWithLock(ctx, parent); err != nil {
			return err
		}
		s.publishLotEvents(ctx, parent)
	}
	return nil
}

// GetEvent returns one event with its decoded key data elements
func (s *EventService) GetEvent(ctx context.Context, companyID, eventID uuid.UUID) (*TrackingEventResponse, error) {
	var response *TrackingEventResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		event, err := repos.EventRepo().FindByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event.CompanyID != companyID {
			return shared.ErrNotFound
		}
		r := ToTrackingEventResponse(event)
		response = &r
		return nil
	})
	return response, err
}

// ListEventsForLot returns the lot's event history, newest first, including
// superseded events so the audit trail stays complete.
func (s *EventService) ListEventsForLot(ctx context.Context, companyID uuid.UUID, tlcCode string, filter shared.Filter) ([]TrackingEventResponse, int64, error) {
	var responses []TrackingEventResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		events, count, err := repos.EventRepo().FindByLotPaged(ctx, lot.ID, filter)
		if err != nil {
			return err
		}
		total = count
		responses = make([]TrackingEventResponse, 0, len(events))
		for i := range events {
			responses = append(responses, ToTrackingEventResponse(&events[i]))
		}
		return nil
	})
	return responses, total, err
}

func (s *EventService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, event)
}

func (s *EventService) publishLotEvents(ctx context.Context, lot *traceability.TraceabilityLot) {
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
