package handler

import (
	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/gin-gonic/gin"
)

// LotHandler handles traceability lot API endpoints
type LotHandler struct {
	BaseHandler
	lotService   *apptrace.LotService
	stockService *apptrace.StockService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(lotService *apptrace.LotService, stockService *apptrace.StockService) *LotHandler {
	return &LotHandler{
		lotService:   lotService,
		stockService: stockService,
	}
}

// CreateLot godoc
// @ID           createLot
// @Summary      Register a traceability lot
// @Description  Creates a new lot identified by its traceability lot code
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        request body traceability.CreateLotRequest true "Lot details"
// @Success      201 {object} APIResponse[traceability.LotResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /lots [post]
func (h *LotHandler) CreateLot(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	var req apptrace.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lot, err := h.lotService.CreateLot(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lot)
}

// GetLot godoc
// @ID           getLot
// @Summary      Get a lot by TLC code
// @Tags         lots
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      200 {object} APIResponse[traceability.LotResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode} [get]
func (h *LotHandler) GetLot(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	lot, err := h.lotService.GetLot(c.Request.Context(), companyID, c.Param("tlcCode"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// ListLots godoc
// @ID           listLots
// @Summary      List lots for the company
// @Description  Returns a paginated list of lots, filterable by status
// @Tags         lots
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Lot status filter"
// @Success      200 {object} APIResponse[[]traceability.LotResponse]
// @Router       /lots [get]
func (h *LotHandler) ListLots(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	filter := bindListFilter(c)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if productID := c.Query("product_id"); productID != "" {
		filter.Filters["product_id"] = productID
	}

	result, err := h.lotService.ListLots(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RecallLot godoc
// @ID           recallLot
// @Summary      Recall a lot
// @Description  Marks the lot recalled and reports how many submitted events are affected
// @Tags         lots
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      200 {object} APIResponse[RecallData]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /lots/{tlcCode}/recall [post]
func (h *LotHandler) RecallLot(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	tlcCode := c.Param("tlcCode")
	affected, err := h.lotService.RecallLot(c.Request.Context(), companyID, tlcCode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, RecallData{TLCCode: tlcCode, AffectedEvents: affected})
}

// ArchiveLot godoc
// @ID           archiveLot
// @Summary      Archive a depleted lot
// @Tags         lots
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /lots/{tlcCode}/archive [post]
func (h *LotHandler) ArchiveLot(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	if err := h.lotService.ArchiveLot(c.Request.Context(), companyID, c.Param("tlcCode")); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetStock godoc
// @ID           getLotStock
// @Summary      Compute current stock for a lot
// @Description  Replays the lot's submitted events and returns the derived quantity with a per-event-type breakdown
// @Tags         lots
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      200 {object} APIResponse[traceability.StockResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/stock [get]
func (h *LotHandler) GetStock(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	stock, err := h.stockService.CurrentStock(c.Request.Context(), companyID, c.Param("tlcCode"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stock)
}
