package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
)

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errs.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate identifier"})
	case errors.Is(err, errs.ErrCapacityExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "lot capacity exceeded"})
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// batchResponse renders per-item batch outcomes. Partial failures answer
// 207 so the caller can retry the failed items individually.
func batchResponse(c *gin.Context, results []errs.BatchItemResult, err error) {
	items := make([]gin.H, len(results))
	for i, r := range results {
		item := gin.H{"id": r.ID, "ok": r.OK()}
		if r.Err != nil {
			item["error"] = r.Err.Error()
		}
		items[i] = item
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"results": items})
}
