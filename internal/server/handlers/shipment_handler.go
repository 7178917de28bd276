package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/service/shipments"
)

// ShipmentHandler serves the shipment journal routes.
type ShipmentHandler struct {
	svc    *shipments.Service
	logger *zap.Logger
}

// NewShipmentHandler constructs the HTTP handler adapter.
func NewShipmentHandler(svc *shipments.Service, logger *zap.Logger) *ShipmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentHandler{svc: svc, logger: logger}
}

// Create records one dispatch against a lot.
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req models.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	shipment, err := h.svc.Create(c.Request.Context(), c.Param("dealID"), c.Param("lotID"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

// createBatchRequest records shipments against several lots at once.
type createBatchRequest struct {
	Items []shipments.BatchItem `json:"items" binding:"required"`
}

// CreateBatch fans dispatch recording out over lots; partial failures answer
// 207 with per-item outcomes.
func (h *ShipmentHandler) CreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := h.svc.CreateBatch(c.Request.Context(), c.Param("dealID"), req.Items)
	if results == nil {
		respondError(c, h.logger, err)
		return
	}
	batchResponse(c, results, err)
}

// Get returns one shipment joined with its lot projection.
func (h *ShipmentHandler) Get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("shipmentID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListForDeal returns a deal's shipments with lot projections.
func (h *ShipmentHandler) ListForDeal(c *gin.Context) {
	out, err := h.svc.ListForDeal(c.Request.Context(), c.Param("dealID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": out})
}

// ListForLot returns a lot's shipments with lot projections.
func (h *ShipmentHandler) ListForLot(c *gin.Context) {
	out, err := h.svc.ListForLot(c.Request.Context(), c.Param("lotID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": out})
}

// Update merges a partial patch into the shipment.
func (h *ShipmentHandler) Update(c *gin.Context) {
	var patch models.ShipmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("shipmentID"), patch); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// updateBatchRequest applies one patch to many shipments.
type updateBatchRequest struct {
	ShipmentIDs []string             `json:"shipment_ids" binding:"required"`
	Patch       models.ShipmentPatch `json:"patch"`
}

// UpdateBatch fans the patch out over the shipments.
func (h *ShipmentHandler) UpdateBatch(c *gin.Context) {
	var req updateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := h.svc.UpdateBatch(c.Request.Context(), req.ShipmentIDs, req.Patch)
	batchResponse(c, results, err)
}

// Delete removes a shipment and re-credits the lot's capacity. Deleting an
// already-deleted shipment succeeds.
func (h *ShipmentHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("dealID"), c.Param("lotID"), c.Param("shipmentID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
