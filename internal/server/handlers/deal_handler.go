package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/service/analytics"
	"github.com/nkhandelwal3/sauda-backend/internal/service/deals"
	"github.com/nkhandelwal3/sauda-backend/internal/service/ledger"
)

// DealHandler serves deal lifecycle, cost estimation and analytics routes.
type DealHandler struct {
	dealSvc      *deals.Service
	ledgerSvc    *ledger.Service
	analyticsSvc *analytics.Service
	logger       *zap.Logger
}

// NewDealHandler constructs the HTTP handler adapter.
func NewDealHandler(dealSvc *deals.Service, ledgerSvc *ledger.Service, analyticsSvc *analytics.Service, logger *zap.Logger) *DealHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DealHandler{dealSvc: dealSvc, ledgerSvc: ledgerSvc, analyticsSvc: analyticsSvc, logger: logger}
}

// Create registers a deal and spawns its lots.
func (h *DealHandler) Create(c *gin.Context) {
	var req models.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	deal, err := h.dealSvc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// List returns every deal, newest first.
func (h *DealHandler) List(c *gin.Context) {
	out, err := h.dealSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": out})
}

// Get returns one deal.
func (h *DealHandler) Get(c *gin.Context) {
	deal, err := h.dealSvc.Get(c.Request.Context(), c.Param("dealID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// UpdateStatus stores the supplied status string verbatim.
func (h *DealHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateDealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.dealSvc.UpdateStatus(c.Request.Context(), c.Param("dealID"), req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete cascades a deal deletion to its lots and shipments.
func (h *DealHandler) Delete(c *gin.Context) {
	if err := h.dealSvc.Delete(c.Request.Context(), c.Param("dealID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostCostEstimate runs the batch nett-amount pass and posts the aggregate
// debit against the broker.
func (h *DealHandler) PostCostEstimate(c *gin.Context) {
	var req models.CostEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, results, err := h.ledgerSvc.PostCostEstimate(c.Request.Context(), c.Param("dealID"), req)
	if err != nil && result == nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	items := make([]gin.H, len(results))
	for i, r := range results {
		item := gin.H{"id": r.ID, "ok": r.OK()}
		if r.Err != nil {
			item["error"] = r.Err.Error()
		}
		items[i] = item
	}
	c.JSON(status, gin.H{"response": result, "results": items})
}

// Analytics returns the deal's progress rollup.
func (h *DealHandler) Analytics(c *gin.Context) {
	rollup, err := h.analyticsSvc.ComputeDealAnalytics(c.Request.Context(), c.Param("dealID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rollup)
}
