package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/service/export"
)

// ExportHandler triggers spreadsheet exports on demand. Routes are only
// registered when the sheets integration is configured.
type ExportHandler struct {
	svc    *export.Service
	logger *zap.Logger
}

// NewExportHandler constructs the HTTP handler adapter.
func NewExportHandler(svc *export.Service, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{svc: svc, logger: logger}
}

// BrokerStatement appends the broker's full statement to the spreadsheet.
func (h *ExportHandler) BrokerStatement(c *gin.Context) {
	if err := h.svc.ExportBrokerStatement(c.Request.Context(), c.Param("brokerID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// DealProgress appends a progress row per deal to the spreadsheet.
func (h *ExportHandler) DealProgress(c *gin.Context) {
	if err := h.svc.ExportDealProgress(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusAccepted)
}
