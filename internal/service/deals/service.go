// Package deals owns the deal ("sauda") lifecycle: creation with lot
// spawning, status updates, and cascading deletion.
package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
	"github.com/nkhandelwal3/sauda-backend/pkg/clients/notify"
)

// Default brokerage rate per quintal, applied to freshly spawned lots until
// a cost-estimate pass overrides it.
const defaultBrokerageRate = 3.00

// Service manages deals and their spawned lots.
type Service struct {
	deals     repository.DealStore
	lots      repository.LotStore
	shipments repository.ShipmentStore
	brokers   repository.BrokerStore
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewService wires a deal service instance.
func NewService(deals repository.DealStore, lots repository.LotStore, shipments repository.ShipmentStore, brokers repository.BrokerStore, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		deals:     deals,
		lots:      lots,
		shipments: shipments,
		brokers:   brokers,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create validates the request, inserts the deal with status INITIATED, and
// spawns total_lots sequentially labeled lots. total_lots is fixed at
// creation; it is never reconciled against the actual lot count later.
func (s *Service) Create(ctx context.Context, req models.CreateDealRequest) (*models.Deal, error) {
	if req.Rate <= 0 {
		return nil, errs.Validation("rate", "must be positive")
	}
	if req.TotalLots < 0 {
		return nil, errs.Validation("total_lots", "must not be negative")
	}
	if _, err := s.brokers.FindByBrokerID(ctx, req.BrokerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	deal := models.Deal{
		PublicID:      uuid.NewString(),
		Name:          req.Name,
		BrokerID:      req.BrokerID,
		PartyName:     req.PartyName,
		PurchaseDate:  req.PurchaseDate.UTC(),
		TotalLots:     req.TotalLots,
		Rate:          req.Rate,
		RiceType:      req.RiceType,
		RiceAgreement: req.RiceAgreement,
		Status:        models.DealStatusInitiated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.deals.Insert(ctx, deal); err != nil {
		return nil, err
	}

	lots := make([]models.Lot, deal.TotalLots)
	for i := range lots {
		label := fmt.Sprintf("LOT-%d", i+1)
		// Staggered created_at keeps spawn order stable under the
		// created_at sort used by lot listings.
		lots[i] = models.Lot{
			PublicID:    uuid.NewString(),
			DealID:      deal.PublicID,
			RiceLotNo:   &label,
			Brokerage:   defaultBrokerageRate,
			ShipmentIDs: []string{},
			CreatedAt:   now.Add(time.Duration(i) * time.Millisecond),
			UpdatedAt:   now,
		}
	}
	if err := s.lots.InsertMany(ctx, lots); err != nil {
		return nil, err
	}

	if err := s.brokers.AppendDeal(ctx, deal.BrokerID, deal.PublicID); err != nil {
		s.logger.Error("deal created but broker link failed",
			zap.String("deal_id", deal.PublicID),
			zap.String("broker_id", deal.BrokerID),
			zap.Error(err))
	}

	s.logger.Info("deal created",
		zap.String("deal_id", deal.PublicID),
		zap.Int("total_lots", deal.TotalLots))
	return &deal, nil
}

// Get returns a deal by public id.
func (s *Service) Get(ctx context.Context, dealID string) (*models.Deal, error) {
	return s.deals.FindByPublicID(ctx, dealID)
}

// List returns every deal, newest first.
func (s *Service) List(ctx context.Context) ([]models.Deal, error) {
	return s.deals.List(ctx)
}

// UpdateStatus stores the status string verbatim; there is no validated
// transition table. COMPLETED additionally stamps the completion time.
func (s *Service) UpdateStatus(ctx context.Context, dealID, status string) error {
	if status == "" {
		return errs.Validation("status", "must not be empty")
	}

	var endAt *time.Time
	if status == models.DealStatusCompleted {
		now := time.Now().UTC()
		endAt = &now
	}

	if err := s.deals.SetStatus(ctx, dealID, status, endAt); err != nil {
		return err
	}

	if err := s.notifier.PublishStatusChange(ctx, notify.StatusEvent{
		DealID:     dealID,
		Status:     status,
		Trigger:    "manual",
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("status event delivery failed", zap.String("deal_id", dealID), zap.Error(err))
	}
	return nil
}

// Delete removes a deal and cascades to its lots and shipments, then pulls
// the deal from the broker's deal list. The document deletions are
// independent; later steps are still attempted when an earlier one fails.
func (s *Service) Delete(ctx context.Context, dealID string) error {
	deal, err := s.deals.FindByPublicID(ctx, dealID)
	if err != nil {
		return err
	}

	if _, err := s.shipments.DeleteByDeal(ctx, dealID); err != nil {
		s.logger.Error("cascade shipment delete failed", zap.String("deal_id", dealID), zap.Error(err))
	}
	if err := s.lots.DeleteByDeal(ctx, dealID); err != nil {
		s.logger.Error("cascade lot delete failed", zap.String("deal_id", dealID), zap.Error(err))
	}
	if err := s.deals.Delete(ctx, dealID); err != nil {
		return err
	}
	if err := s.brokers.RemoveDeal(ctx, deal.BrokerID, dealID); err != nil {
		s.logger.Error("broker unlink failed",
			zap.String("deal_id", dealID),
			zap.String("broker_id", deal.BrokerID),
			zap.Error(err))
	}

	s.logger.Info("deal deleted", zap.String("deal_id", dealID))
	return nil
}
