package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/service/ledger"
)

// BrokerHandler serves broker registration and ledger postings.
type BrokerHandler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

// NewBrokerHandler constructs the HTTP handler adapter.
func NewBrokerHandler(svc *ledger.Service, logger *zap.Logger) *BrokerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrokerHandler{svc: svc, logger: logger}
}

// Create registers a broker; reused broker ids answer 409.
func (h *BrokerHandler) Create(c *gin.Context) {
	var req models.CreateBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	broker, err := h.svc.CreateBroker(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			h.logger.Warn("duplicate broker rejected", zap.String("broker_id", req.BrokerID))
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, broker)
}

// List returns every broker.
func (h *BrokerHandler) List(c *gin.Context) {
	brokers, err := h.svc.ListBrokers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": brokers})
}

// Get returns one broker.
func (h *BrokerHandler) Get(c *gin.Context) {
	broker, err := h.svc.GetBroker(c.Request.Context(), c.Param("brokerID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, broker)
}

// PostLedgerEntry appends a posting and updates the running totals.
func (h *BrokerHandler) PostLedgerEntry(c *gin.Context) {
	var req models.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.PostEntry(c.Request.Context(), c.Param("brokerID"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListLedger returns a broker's postings in date order.
func (h *BrokerHandler) ListLedger(c *gin.Context) {
	entries, err := h.svc.ListEntries(c.Request.Context(), c.Param("brokerID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": entries})
}
