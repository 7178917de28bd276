// Package reconcile repairs the gap left by non-transactional shipment
// writes: a shipment document that exists while the owning lot's shipment
// list and counters were never updated.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/repository"
	"github.com/nkhandelwal3/sauda-backend/internal/service/lots"
)

// Report summarizes one reconciliation pass.
type Report struct {
	Scanned   int
	Orphaned  int
	Reapplied int
	Failed    int
}

// Service scans for orphaned shipments and re-applies the missing lot
// updates. Re-application goes through the lot ledger, so the capacity guard
// still holds: an orphan that no longer fits is reported, not forced.
type Service struct {
	shipments repository.ShipmentStore
	lots      repository.LotStore
	lotLedger *lots.Service
	logger    *zap.Logger
}

// NewService wires a reconciliation instance.
func NewService(shipments repository.ShipmentStore, lotStore repository.LotStore, lotLedger *lots.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{shipments: shipments, lots: lotStore, lotLedger: lotLedger, logger: logger}
}

// Run performs one full scan. Shipments created while the scan is running
// may be seen before their lot update lands; the pass after next settles
// them, so a single missed cycle is harmless.
func (s *Service) Run(ctx context.Context) (Report, error) {
	var report Report

	shipments, err := s.shipments.List(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(shipments)

	// Cache lots per id; many shipments share a lot.
	applied := make(map[string]map[string]bool)

	for _, shipment := range shipments {
		ids, ok := applied[shipment.LotID]
		if !ok {
			lot, err := s.lots.FindByPublicID(ctx, shipment.LotID)
			if err != nil {
				s.logger.Warn("orphan scan: lot lookup failed",
					zap.String("lot_id", shipment.LotID), zap.Error(err))
				report.Failed++
				continue
			}
			ids = make(map[string]bool, len(lot.ShipmentIDs))
			for _, id := range lot.ShipmentIDs {
				ids[id] = true
			}
			applied[shipment.LotID] = ids
		}

		if ids[shipment.PublicID] {
			continue
		}

		report.Orphaned++
		if err := s.lotLedger.ApplyShipment(ctx, shipment.LotID, shipment.PublicID, shipment.SentBoraCount); err != nil {
			s.logger.Error("orphan re-apply failed",
				zap.String("shipment_id", shipment.PublicID),
				zap.String("lot_id", shipment.LotID),
				zap.Int("sent_bora_count", shipment.SentBoraCount),
				zap.Error(err))
			report.Failed++
			continue
		}
		ids[shipment.PublicID] = true
		report.Reapplied++
		s.logger.Info("orphaned shipment re-applied",
			zap.String("shipment_id", shipment.PublicID),
			zap.String("lot_id", shipment.LotID))
	}

	return report, nil
}
