package handler

import (
	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReconciliationHandler handles inventory reconciliation and anomaly endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *apptrace.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *apptrace.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: service}
}

// resolveAnomalyRequest carries the resolution note
type resolveAnomalyRequest struct {
	Note string `json:"note" binding:"required"`
}

// ReconcileLot godoc
// @ID           reconcileLot
// @Summary      Reconcile a lot's ledger against its cached quantity
// @Description  Computes the mass balance, grades the variance, and opens an anomaly when the variance crosses the flagging threshold
// @Tags         reconciliation
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      200 {object} APIResponse[traceability.BalanceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/reconcile [post]
func (h *ReconciliationHandler) ReconcileLot(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	balance, err := h.reconciliationService.ReconcileLot(c.Request.Context(), companyID, c.Param("tlcCode"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// SweepCompany godoc
// @ID           sweepCompany
// @Summary      Reconcile every active lot of the company
// @Description  Runs the mass balance check over all active lots and reports how many anomalies were opened
// @Tags         reconciliation
// @Produce      json
// @Success      200 {object} APIResponse[traceability.SweepResult]
// @Router       /reconciliation/sweep [post]
func (h *ReconciliationHandler) SweepCompany(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	result, err := h.reconciliationService.SweepCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListAnomalies godoc
// @ID           listAnomalies
// @Summary      List inventory anomalies
// @Description  Returns a paginated list of anomalies, filterable by status and severity
// @Tags         reconciliation
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Anomaly status filter"
// @Param        severity query string false "Severity filter"
// @Success      200 {object} APIResponse[[]traceability.AnomalyResponse]
// @Router       /anomalies [get]
func (h *ReconciliationHandler) ListAnomalies(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	filter := bindListFilter(c)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if severity := c.Query("severity"); severity != "" {
		filter.Filters["severity"] = severity
	}
	if lotID := c.Query("lot_id"); lotID != "" {
		filter.Filters["lot_id"] = lotID
	}

	result, err := h.reconciliationService.ListAnomalies(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ResolveAnomaly godoc
// @ID           resolveAnomaly
// @Summary      Resolve an open anomaly
// @Description  Closes the anomaly with a resolution note
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        id path string true "Anomaly ID"
// @Param        request body resolveAnomalyRequest true "Resolution note"
// @Success      200 {object} APIResponse[traceability.AnomalyResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /anomalies/{id}/resolve [post]
func (h *ReconciliationHandler) ResolveAnomaly(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	anomalyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid anomaly ID format")
		return
	}

	var req resolveAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Resolution note is required")
		return
	}

	anomaly, err := h.reconciliationService.ResolveAnomaly(c.Request.Context(), companyID, anomalyID, req.Note)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, anomaly)
}
