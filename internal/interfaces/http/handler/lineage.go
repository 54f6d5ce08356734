package handler

import (
	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/gin-gonic/gin"
)

// defaultTraversalDepth bounds ancestry and descendants walks when the
// client does not ask for a specific depth.
const defaultTraversalDepth = 50

// LineageHandler handles lot genealogy endpoints
type LineageHandler struct {
	BaseHandler
	lineageService *apptrace.LineageService
}

// NewLineageHandler creates a new LineageHandler
func NewLineageHandler(lineageService *apptrace.LineageService) *LineageHandler {
	return &LineageHandler{lineageService: lineageService}
}

// GetParents godoc
// @ID           getLotParents
// @Summary      List direct parent lots
// @Description  Returns the transformation edges that consumed other lots to produce this one
// @Tags         lineage
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      200 {object} APIResponse[[]traceability.LineageEdgeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/lineage/parents [get]
func (h *LineageHandler) GetParents(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	edges, err := h.lineageService.Parents(c.Request.Context(), companyID, c.Param("tlcCode"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, edges)
}

// GetChildren godoc
// @ID           getLotChildren
// @Summary      List direct child lots
// @Description  Returns the transformation edges where this lot was consumed as an input
// @Tags         lineage
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Success      200 {object} APIResponse[[]traceability.LineageEdgeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/lineage/children [get]
func (h *LineageHandler) GetChildren(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	edges, err := h.lineageService.Children(c.Request.Context(), companyID, c.Param("tlcCode"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, edges)
}

// GetAncestry godoc
// @ID           getLotAncestry
// @Summary      Trace a lot back to its origins
// @Description  Walks the transformation graph upward to every source lot, one row per ancestor with depth and path
// @Tags         lineage
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Param        max_depth query int false "Maximum traversal depth" default(50)
// @Success      200 {object} APIResponse[[]traceability.LineageNodeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/lineage/ancestry [get]
func (h *LineageHandler) GetAncestry(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	maxDepth := queryInt(c, "max_depth", defaultTraversalDepth)
	nodes, err := h.lineageService.FullAncestry(c.Request.Context(), companyID, c.Param("tlcCode"), maxDepth)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nodes)
}

// GetDescendants godoc
// @ID           getLotDescendants
// @Summary      Trace a lot forward to every derived lot
// @Description  Walks the transformation graph downward, the traversal a recall impact assessment runs
// @Tags         lineage
// @Produce      json
// @Param        tlcCode path string true "Traceability lot code"
// @Param        max_depth query int false "Maximum traversal depth" default(50)
// @Success      200 {object} APIResponse[[]traceability.LineageNodeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /lots/{tlcCode}/lineage/descendants [get]
func (h *LineageHandler) GetDescendants(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identification required")
		return
	}

	maxDepth := queryInt(c, "max_depth", defaultTraversalDepth)
	nodes, err := h.lineageService.FullDescendants(c.Request.Context(), companyID, c.Param("tlcCode"), maxDepth)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nodes)
}
