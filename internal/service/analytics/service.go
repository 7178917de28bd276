// Package analytics derives read-only per-deal progress metrics by folding
// over a deal's lots and their shipments.
package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// Service computes deal progress rollups.
type Service struct {
	deals     repository.DealStore
	lots      repository.LotStore
	shipments repository.ShipmentStore
	logger    *zap.Logger
}

// NewService wires an analytics instance.
func NewService(deals repository.DealStore, lots repository.LotStore, shipments repository.ShipmentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deals: deals, lots: lots, shipments: shipments, logger: logger}
}

// ComputeDealAnalytics folds a deal's lots and shipments into progress
// counters. A deal with no lots or shipments yet reports zero progress, not
// an error. The FRK block is present only when at least one lot has an
// FRK-flagged shipment.
func (s *Service) ComputeDealAnalytics(ctx context.Context, dealID string) (*models.DealAnalytics, error) {
	deal, err := s.deals.FindByPublicID(ctx, dealID)
	if err != nil {
		return nil, err
	}

	dealLots, err := s.lots.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	out := &models.DealAnalytics{
		DealID:      deal.PublicID,
		TotalLots:   deal.TotalLots,
		FlapSticker: models.Progress{Total: deal.TotalLots},
		GatePass:    models.Progress{Total: deal.TotalLots},
	}

	var frkEnabled, frkComplete int

	for _, lot := range dealLots {
		out.Bora.Shipped += lot.ShippedBoraCount
		out.Bora.Total += lot.TotalBoraCount

		lotShipments, err := s.shipments.ListByLot(ctx, lot.PublicID)
		if err != nil {
			return nil, err
		}

		var hasFlapSticker, hasGatePass, hasFRK, hasFRKComplete bool
		for _, sh := range lotShipments {
			if sh.FlapStickerDate != nil && sh.FlapStickerVia != nil {
				hasFlapSticker = true
			}
			if sh.GatePassDate != nil && sh.GatePassVia != nil {
				hasGatePass = true
			}
			if sh.FRK {
				hasFRK = true
				if frkDispatchComplete(sh.FRKDispatch) {
					hasFRKComplete = true
				}
			}
		}

		if hasFlapSticker {
			out.FlapSticker.Completed++
		}
		if hasGatePass {
			out.GatePass.Completed++
		}
		if hasFRK {
			frkEnabled++
		}
		if hasFRKComplete {
			frkComplete++
		}
	}

	if frkEnabled > 0 {
		out.FRK = &models.Progress{Completed: frkComplete, Total: frkEnabled}
	}
	return out, nil
}

// frkDispatchComplete requires all five by-product sub-fields populated.
func frkDispatchComplete(d *models.FRKDispatch) bool {
	return d != nil &&
		d.Date != nil &&
		d.Via != nil &&
		d.VehicleNo != nil &&
		d.Transporter != nil &&
		d.Qty != nil
}
