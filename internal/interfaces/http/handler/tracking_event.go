package handler

import (
	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TrackingEventHandler handles CTE submission and retrieval endpoints
type TrackingEventHandler struct {
	BaseHandler
	eventService *apptrace.EventService
}

// NewTrackingEventHandler creates a new TrackingEventHandler
func NewTrackingEventHandler(eventService *apptrace.EventService) *TrackingEventHandler {
	return &TrackingEventHandler{eventService: eventService}
}

// SubmitEvent godoc
// @ID           submitTrackingEvent
// @Summary      Submit a critical tracking event
// @Description  Validates the event's key data elements and appends it to the lot's ledger. An Idempotency-Key header makes retries safe.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for safe retries"
// @Param        request body traceability.SubmitEventRequest true "Event details"
// @Success      201 {object} APIResponse[traceability.SubmitEventResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /events [post]
func (h *TrackingEventHandler) SubmitEvent(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	var req apptrace.SubmitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// The header wins over the body field so clients can set the key once
	// in their HTTP layer.
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	result, err := h.eventService.SubmitEvent(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if result.Duplicate {
		// The original submission already took effect; report it without
		// claiming a second append happened.
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetEvent godoc
// @ID           getTrackingEvent
// @Summary      Get a tracking event by ID
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} APIResponse[traceability.TrackingEventResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /events/{id} [get]
func (h *TrackingEventHandler) GetEvent(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid event ID format")
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), companyID, eventID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, event)
}

// ListEventsForLot godoc
// @ID           listLotEvents
// @Summary      List submitted events for a lot
// @Description  Returns the lot's submitted events in chronological order
// @Tags         events
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]traceability.TrackingEventResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/events [get]
func (h *TrackingEventHandler) ListEventsForLot(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	filter := bindListFilter(c)
	events, total, err := h.eventService.ListEventsForLot(c.Request.Context(), companyID, c.Param("tlcCode"), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, events, total, filter.Page, filter.PageSize)
}
