// Package lots is the lot ledger: it owns a lot's bora-count bookkeeping and
// cost fields. Shipment creation and deletion flow through here so the
// invariant remaining + sum(active sent counts) == total always holds.
package lots

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// Service maintains lot quantity and expense state.
type Service struct {
	lots      repository.LotStore
	shipments repository.ShipmentStore
	logger    *zap.Logger
}

// NewService wires a lot ledger instance.
func NewService(lots repository.LotStore, shipments repository.ShipmentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{lots: lots, shipments: shipments, logger: logger}
}

// Get returns a lot by public id.
func (s *Service) Get(ctx context.Context, lotID string) (*models.Lot, error) {
	return s.lots.FindByPublicID(ctx, lotID)
}

// ListByDeal returns a deal's lots in creation order.
func (s *Service) ListByDeal(ctx context.Context, dealID string) ([]models.Lot, error) {
	return s.lots.ListByDeal(ctx, dealID)
}

// ApplyShipment consumes capacity for a new shipment. The store issues one
// guarded atomic update; a count exceeding the remaining capacity fails with
// errs.ErrCapacityExceeded and leaves the lot untouched.
func (s *Service) ApplyShipment(ctx context.Context, lotID, shipmentID string, sentBoraCount int) error {
	if sentBoraCount < 0 {
		return errs.Validation("sent_bora_count", "must not be negative")
	}
	if err := s.lots.ApplyShipment(ctx, lotID, shipmentID, sentBoraCount); err != nil {
		return err
	}
	s.refreshFullyShipped(ctx, lotID)
	return nil
}

// ReverseShipment re-credits a deleted shipment's count.
func (s *Service) ReverseShipment(ctx context.Context, lotID, shipmentID string, sentBoraCount int) error {
	if sentBoraCount < 0 {
		return errs.Validation("sent_bora_count", "must not be negative")
	}
	return s.lots.ReverseShipment(ctx, lotID, shipmentID, sentBoraCount)
}

// ResetCapacity sets a new total bora count and invalidates every shipment
// recorded against the lot, because their consumption was computed against
// the old total. Remaining capacity resets to the new total.
func (s *Service) ResetCapacity(ctx context.Context, lotID string, newTotal int) error {
	if newTotal < 0 {
		return errs.Validation("total_bora_count", "must not be negative")
	}
	if err := s.lots.ResetCapacity(ctx, lotID, newTotal); err != nil {
		return err
	}
	deleted, err := s.shipments.DeleteByLot(ctx, lotID)
	if err != nil {
		// Counter already reset; orphaned shipments will surface in the next
		// reconciliation pass.
		s.logger.Error("capacity reset left stale shipments", zap.String("lot_id", lotID), zap.Error(err))
		return err
	}
	if deleted > 0 {
		s.logger.Info("capacity reset invalidated shipments",
			zap.String("lot_id", lotID),
			zap.Int64("deleted", deleted),
			zap.Int("new_total", newTotal))
	}
	return nil
}

// Update merges a partial patch into the lot. A patch carrying a new total
// bora count goes through ResetCapacity first, then the remaining fields are
// applied.
func (s *Service) Update(ctx context.Context, lotID string, patch models.LotPatch) error {
	if patch.TotalBoraCount != nil {
		if err := s.ResetCapacity(ctx, lotID, *patch.TotalBoraCount); err != nil {
			return err
		}
		patch.TotalBoraCount = nil
	}
	return s.lots.ApplyPatch(ctx, lotID, patch)
}

// UpdateBatch applies the same patch to several lots concurrently. Items are
// independent: one failure does not roll back siblings. The returned results
// are positionally aligned with lotIDs; err is a *errs.PartialBatchFailure
// when at least one item failed.
func (s *Service) UpdateBatch(ctx context.Context, lotIDs []string, patch models.LotPatch) ([]errs.BatchItemResult, error) {
	results := make([]errs.BatchItemResult, len(lotIDs))

	var wg sync.WaitGroup
	for i, lotID := range lotIDs {
		wg.Add(1)
		go func(i int, lotID string) {
			defer wg.Done()
			results[i] = errs.BatchItemResult{ID: lotID, Err: s.Update(ctx, lotID, patch)}
		}(i, lotID)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			return results, &errs.PartialBatchFailure{Results: results}
		}
	}
	return results, nil
}

// SetCost persists a computed nett amount and the expense patch it was
// computed from.
func (s *Service) SetCost(ctx context.Context, lotID string, nettAmount float64, patch models.CostPatch) error {
	return s.lots.SetCost(ctx, lotID, nettAmount, patch)
}

func (s *Service) refreshFullyShipped(ctx context.Context, lotID string) {
	lot, err := s.lots.FindByPublicID(ctx, lotID)
	if err != nil {
		s.logger.Warn("fully-shipped refresh lookup failed", zap.String("lot_id", lotID), zap.Error(err))
		return
	}
	if lot.RemainingBoraCount == 0 && !lot.IsFullyShipped {
		if err := s.lots.SetFullyShipped(ctx, lotID, true); err != nil {
			s.logger.Warn("fully-shipped flag update failed", zap.String("lot_id", lotID), zap.Error(err))
		}
	}
}
