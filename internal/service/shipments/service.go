// Package shipments is the shipment journal: it records dispatch events and
// keeps the owning lot's counters and the deal's status consistent. The
// writes span three documents and are not transactional; the reconciler
// covers the shipment-inserted-but-never-applied gap.
package shipments

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
	"github.com/nkhandelwal3/sauda-backend/internal/service/lots"
	"github.com/nkhandelwal3/sauda-backend/pkg/clients/notify"
)

// Service creates, reads, updates and deletes shipment records.
type Service struct {
	shipments repository.ShipmentStore
	deals     repository.DealStore
	lotLedger *lots.Service
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewService wires a shipment journal instance.
func NewService(shipments repository.ShipmentStore, deals repository.DealStore, lotLedger *lots.Service, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		shipments: shipments,
		deals:     deals,
		lotLedger: lotLedger,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create records one dispatch event: inserts the shipment, consumes lot
// capacity through the lot ledger, and pushes the deal to IN_TRANSPORT.
// A capacity violation removes the just-inserted record and fails cleanly.
func (s *Service) Create(ctx context.Context, dealID, lotID string, req models.CreateShipmentRequest) (*models.Shipment, error) {
	if _, err := s.deals.FindByPublicID(ctx, dealID); err != nil {
		return nil, err
	}

	shipment, err := s.create(ctx, dealID, lotID, req)
	if err != nil {
		return nil, err
	}

	s.pushInTransport(ctx, dealID)
	return shipment, nil
}

// BatchItem pairs a lot with the shipment to record against it.
type BatchItem struct {
	LotID   string                       `json:"lot_id" binding:"required"`
	Request models.CreateShipmentRequest `json:"shipment"`
}

// CreateBatch records shipments against several lots concurrently. Each lot
// update is independent; a failing item does not roll back its siblings.
// Results are positionally aligned with items (ID holds the created
// shipment's public id on success, the lot id on failure); err is a
// *errs.PartialBatchFailure when at least one item failed.
func (s *Service) CreateBatch(ctx context.Context, dealID string, items []BatchItem) ([]errs.BatchItemResult, error) {
	if _, err := s.deals.FindByPublicID(ctx, dealID); err != nil {
		return nil, err
	}

	results := make([]errs.BatchItemResult, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			shipment, err := s.create(ctx, dealID, item.LotID, item.Request)
			if err != nil {
				results[i] = errs.BatchItemResult{ID: item.LotID, Err: err}
				return
			}
			results[i] = errs.BatchItemResult{ID: shipment.PublicID}
		}(i, item)
	}
	wg.Wait()

	// Only actual shipment activity moves the deal; a batch where every
	// item failed must not touch the status.
	for _, r := range results {
		if r.Err == nil {
			s.pushInTransport(ctx, dealID)
			break
		}
	}

	for _, r := range results {
		if r.Err != nil {
			return results, &errs.PartialBatchFailure{Results: results}
		}
	}
	return results, nil
}

// create is Create without the per-call deal lookup and status push, for the
// batch fan-out.
func (s *Service) create(ctx context.Context, dealID, lotID string, req models.CreateShipmentRequest) (*models.Shipment, error) {
	if req.SentBoraCount < 0 {
		return nil, errs.Validation("sent_bora_count", "must not be negative")
	}

	now := time.Now().UTC()
	shipment := models.Shipment{
		PublicID:        uuid.NewString(),
		LotID:           lotID,
		DealID:          dealID,
		SentBoraCount:   req.SentBoraCount,
		ShippingDate:    req.ShippingDate,
		ShippedVia:      req.ShippedVia,
		FlapStickerDate: req.FlapStickerDate,
		FlapStickerVia:  req.FlapStickerVia,
		GatePassDate:    req.GatePassDate,
		GatePassVia:     req.GatePassVia,
		FRK:             req.FRK,
		FRKDispatch:     req.FRKDispatch,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.shipments.Insert(ctx, shipment); err != nil {
		return nil, err
	}
	if err := s.lotLedger.ApplyShipment(ctx, lotID, shipment.PublicID, req.SentBoraCount); err != nil {
		// Compensate the insert so a rejected shipment leaves no trace. If
		// the compensation itself fails, the next reconciliation pass will
		// find the orphan.
		if _, delErr := s.shipments.Delete(ctx, shipment.PublicID); delErr != nil && !errors.Is(delErr, errs.ErrNotFound) {
			s.logger.Error("failed compensating rejected shipment",
				zap.String("shipment_id", shipment.PublicID), zap.Error(delErr))
		}
		return nil, err
	}
	return &shipment, nil
}

// Get returns a shipment joined with its owning lot's projection.
func (s *Service) Get(ctx context.Context, shipmentID string) (*models.ShipmentWithLot, error) {
	shipment, err := s.shipments.FindByPublicID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	joined := s.join(ctx, []models.Shipment{*shipment})
	return &joined[0], nil
}

// ListForLot returns a lot's shipments with the lot projection attached.
func (s *Service) ListForLot(ctx context.Context, lotID string) ([]models.ShipmentWithLot, error) {
	shipments, err := s.shipments.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, shipments), nil
}

// ListForDeal returns a deal's shipments with lot projections attached.
func (s *Service) ListForDeal(ctx context.Context, dealID string) ([]models.ShipmentWithLot, error) {
	shipments, err := s.shipments.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, shipments), nil
}

// Update merges the non-nil patch fields into the shipment.
func (s *Service) Update(ctx context.Context, shipmentID string, patch models.ShipmentPatch) error {
	return s.shipments.ApplyPatch(ctx, shipmentID, patch)
}

// UpdateBatch applies the same patch to several shipments concurrently.
func (s *Service) UpdateBatch(ctx context.Context, shipmentIDs []string, patch models.ShipmentPatch) ([]errs.BatchItemResult, error) {
	results := make([]errs.BatchItemResult, len(shipmentIDs))

	var wg sync.WaitGroup
	for i, id := range shipmentIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = errs.BatchItemResult{ID: id, Err: s.shipments.ApplyPatch(ctx, id, patch)}
		}(i, id)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			return results, &errs.PartialBatchFailure{Results: results}
		}
	}
	return results, nil
}

// Delete removes a shipment and re-credits its recorded count to the owning
// lot. Deleting an already-deleted shipment is a no-op success, and because
// both the count and the lot id come from the deleted document itself a
// silent zero-credit or a mis-targeted credit cannot occur.
func (s *Service) Delete(ctx context.Context, dealID, lotID, shipmentID string) error {
	shipment, err := s.shipments.Delete(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return err
	}

	// The deleted document is authoritative; a stale lot id in the request
	// path must not credit the wrong lot.
	if lotID != shipment.LotID {
		s.logger.Warn("shipment delete path names a different lot",
			zap.String("requested_lot_id", lotID),
			zap.String("owning_lot_id", shipment.LotID),
			zap.String("shipment_id", shipmentID))
	}

	if err := s.lotLedger.ReverseShipment(ctx, shipment.LotID, shipmentID, shipment.SentBoraCount); err != nil {
		s.logger.Error("shipment deleted but lot re-credit failed",
			zap.String("deal_id", dealID),
			zap.String("lot_id", shipment.LotID),
			zap.String("shipment_id", shipmentID),
			zap.Int("sent_bora_count", shipment.SentBoraCount),
			zap.Error(err))
		return err
	}
	return nil
}

// pushInTransport is the unconditional status transition triggered by any
// shipment activity, regressions from SHIPPED included (legacy behavior).
func (s *Service) pushInTransport(ctx context.Context, dealID string) {
	if err := s.deals.SetStatus(ctx, dealID, models.DealStatusInTransport, nil); err != nil {
		s.logger.Error("failed pushing deal status", zap.String("deal_id", dealID), zap.Error(err))
		return
	}
	if err := s.notifier.PublishStatusChange(ctx, notify.StatusEvent{
		DealID:     dealID,
		Status:     models.DealStatusInTransport,
		Trigger:    "shipment",
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("status event delivery failed", zap.String("deal_id", dealID), zap.Error(err))
	}
}

// join attaches a read-only lot projection to each shipment. The lot read
// happens after the shipment read with no transaction fencing them, so the
// projection can lag; callers tolerate the staleness window.
func (s *Service) join(ctx context.Context, shipments []models.Shipment) []models.ShipmentWithLot {
	projections := make(map[string]*models.LotProjection)
	out := make([]models.ShipmentWithLot, len(shipments))

	for i, shipment := range shipments {
		projection, seen := projections[shipment.LotID]
		if !seen {
			lot, err := s.lotLedger.Get(ctx, shipment.LotID)
			if err != nil {
				s.logger.Warn("lot projection lookup failed",
					zap.String("lot_id", shipment.LotID), zap.Error(err))
			} else {
				projection = &models.LotProjection{
					LotID:              lot.PublicID,
					RiceLotNo:          lot.RiceLotNo,
					TotalBoraCount:     lot.TotalBoraCount,
					ShippedBoraCount:   lot.ShippedBoraCount,
					RemainingBoraCount: lot.RemainingBoraCount,
				}
			}
			projections[shipment.LotID] = projection
		}
		out[i] = models.ShipmentWithLot{Shipment: shipment, Lot: projection}
	}
	return out
}
