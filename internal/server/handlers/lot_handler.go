package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/service/lots"
)

// LotHandler serves lot reads and merge-semantics updates.
type LotHandler struct {
	svc    *lots.Service
	logger *zap.Logger
}

// NewLotHandler constructs the HTTP handler adapter.
func NewLotHandler(svc *lots.Service, logger *zap.Logger) *LotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LotHandler{svc: svc, logger: logger}
}

// ListForDeal returns a deal's lots in spawn order.
func (h *LotHandler) ListForDeal(c *gin.Context) {
	out, err := h.svc.ListByDeal(c.Request.Context(), c.Param("dealID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": out})
}

// Get returns one lot.
func (h *LotHandler) Get(c *gin.Context) {
	lot, err := h.svc.Get(c.Request.Context(), c.Param("lotID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// Update merges a partial patch; a new total bora count resets capacity and
// invalidates the lot's shipments.
func (h *LotHandler) Update(c *gin.Context) {
	var patch models.LotPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("lotID"), patch); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// lotBatchRequest applies one patch to many lots.
type lotBatchRequest struct {
	LotIDs []string        `json:"lot_ids" binding:"required"`
	Patch  models.LotPatch `json:"patch"`
}

// UpdateBatch fans the patch out over the lots; partial failures answer 207.
func (h *LotHandler) UpdateBatch(c *gin.Context) {
	var req lotBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := h.svc.UpdateBatch(c.Request.Context(), req.LotIDs, req.Patch)
	batchResponse(c, results, err)
}
