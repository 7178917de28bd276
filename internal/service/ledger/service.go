// Package ledger owns brokers and their financial ledgers: registration,
// append-only postings with running totals, and the batch cost-estimate pass
// that turns lot nett amounts into a single aggregate debit.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
	"github.com/nkhandelwal3/sauda-backend/internal/service/lots"
)

// Service manages brokers and ledger postings.
type Service struct {
	brokers   repository.BrokerStore
	entries   repository.LedgerStore
	deals     repository.DealStore
	shipments repository.ShipmentStore
	lotLedger *lots.Service
	logger    *zap.Logger
}

// NewService wires a broker ledger instance.
func NewService(brokers repository.BrokerStore, entries repository.LedgerStore, deals repository.DealStore, shipments repository.ShipmentStore, lotLedger *lots.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		brokers:   brokers,
		entries:   entries,
		deals:     deals,
		shipments: shipments,
		lotLedger: lotLedger,
		logger:    logger,
	}
}

// CreateBroker registers a broker. A reused broker id fails with
// errs.ErrDuplicateKey and leaves the existing record untouched.
func (s *Service) CreateBroker(ctx context.Context, req models.CreateBrokerRequest) (*models.Broker, error) {
	if req.BrokerID == "" {
		return nil, errs.Validation("broker_id", "must not be empty")
	}
	if req.Name == "" {
		return nil, errs.Validation("name", "must not be empty")
	}

	now := time.Now().UTC()
	broker := models.Broker{
		BrokerID:  req.BrokerID,
		Name:      req.Name,
		DealIDs:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.brokers.Insert(ctx, broker); err != nil {
		return nil, err
	}
	return &broker, nil
}

// GetBroker returns a broker by its user-supplied id.
func (s *Service) GetBroker(ctx context.Context, brokerID string) (*models.Broker, error) {
	return s.brokers.FindByBrokerID(ctx, brokerID)
}

// ListBrokers returns every broker.
func (s *Service) ListBrokers(ctx context.Context) ([]models.Broker, error) {
	return s.brokers.List(ctx)
}

// ListEntries returns a broker's postings in date order.
func (s *Service) ListEntries(ctx context.Context, brokerID string) ([]models.LedgerEntry, error) {
	if _, err := s.brokers.FindByBrokerID(ctx, brokerID); err != nil {
		return nil, err
	}
	return s.entries.ListByBroker(ctx, brokerID)
}

// PostEntry appends one posting and bumps the broker's running totals:
// CREDIT adds to total_credits, DEBIT to total_debits, ADJUSTMENT to both.
func (s *Service) PostEntry(ctx context.Context, brokerID string, req models.LedgerEntryRequest) (*models.LedgerEntry, error) {
	if req.Amount <= 0 {
		return nil, errs.Validation("amount", "must be positive")
	}
	switch req.EntryType {
	case models.EntryTypeCredit, models.EntryTypeDebit, models.EntryTypeAdjustment:
	default:
		return nil, errs.Validation("entry_type", "must be CREDIT, DEBIT or ADJUSTMENT")
	}
	if _, err := s.brokers.FindByBrokerID(ctx, brokerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}
	entry := models.LedgerEntry{
		PublicID:    uuid.NewString(),
		BrokerID:    brokerID,
		DealID:      req.DealID,
		DealName:    req.DealName,
		Date:        date,
		EntryType:   req.EntryType,
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Remarks:     req.Remarks,
		CreatedAt:   now,
	}
	if err := s.entries.Insert(ctx, entry); err != nil {
		return nil, err
	}

	var credits, debits float64
	switch req.EntryType {
	case models.EntryTypeCredit:
		credits = req.Amount
	case models.EntryTypeDebit:
		debits = req.Amount
	case models.EntryTypeAdjustment:
		credits, debits = req.Amount, req.Amount
	}
	if err := s.brokers.ApplyTotals(ctx, brokerID, credits, debits); err != nil {
		s.logger.Error("ledger entry recorded but broker totals lag",
			zap.String("broker_id", brokerID),
			zap.String("entry_id", entry.PublicID),
			zap.Error(err))
		return nil, err
	}
	return &entry, nil
}

// PostCostEstimate runs the batch nett-amount pass over a deal's lots: each
// lot's nett amount is computed from the deal rate and the patched expense
// fields (falling back to the lot's stored values), persisted to the lot,
// and the sum is posted as ONE aggregate DEBIT against the broker, not one
// posting per lot. Negative nett amounts are valid outcomes; a non-positive
// aggregate persists per-lot amounts but skips the posting (the ledger is
// append-only and entries carry positive amounts). Lots keep their persisted
// amounts even when a sibling fails; failed items are reported per lot.
func (s *Service) PostCostEstimate(ctx context.Context, dealID string, req models.CostEstimateRequest) (*models.CostEstimateResult, []errs.BatchItemResult, error) {
	deal, err := s.deals.FindByPublicID(ctx, dealID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.brokers.FindByBrokerID(ctx, req.BrokerID); err != nil {
		return nil, nil, err
	}

	result := &models.CostEstimateResult{NettAmounts: make(map[string]float64, len(req.LotIDs))}
	results := make([]errs.BatchItemResult, len(req.LotIDs))

	for i, lotID := range req.LotIDs {
		nett, err := s.estimateLot(ctx, deal, lotID, req.Expenses)
		results[i] = errs.BatchItemResult{ID: lotID, Err: err}
		if err != nil {
			s.logger.Warn("cost estimate failed for lot", zap.String("lot_id", lotID), zap.Error(err))
			continue
		}
		result.NettAmounts[lotID] = nett
		result.TotalNettAmount += nett
	}

	if len(result.NettAmounts) > 0 && result.TotalNettAmount > 0 {
		dealName := deal.Name
		entry, err := s.PostEntry(ctx, req.BrokerID, models.LedgerEntryRequest{
			DealID:    &deal.PublicID,
			DealName:  &dealName,
			EntryType: models.EntryTypeDebit,
			Amount:    result.TotalNettAmount,
		})
		if err != nil {
			return nil, results, err
		}
		result.LedgerEntryID = entry.PublicID
	} else if len(result.NettAmounts) > 0 {
		s.logger.Info("cost estimate total not positive, posting skipped",
			zap.String("deal_id", deal.PublicID),
			zap.Float64("total_nett_amount", result.TotalNettAmount))
	}

	for _, r := range results {
		if r.Err != nil {
			return result, results, &errs.PartialBatchFailure{Results: results}
		}
	}
	return result, results, nil
}

// estimateLot computes and persists one lot's nett amount. When the lot is
// FRK-flagged, the diverted quantity comes from its most recent FRK shipment.
func (s *Service) estimateLot(ctx context.Context, deal *models.Deal, lotID string, patch models.CostPatch) (float64, error) {
	lot, err := s.lotLedger.Get(ctx, lotID)
	if err != nil {
		return 0, err
	}

	var frkQty float64
	if lot.FRK {
		frkQty, err = s.latestFRKQty(ctx, lotID)
		if err != nil {
			return 0, err
		}
	}

	breakdown := lots.NettAmount(lots.CostInputs{
		Rate:          deal.Rate,
		Qtl:           lot.Qtl,
		MoistureCut:   pick(patch.MoistureCut, lot.MoistureCut),
		QIExpense:     pick(patch.QIExpense, lot.QIExpense),
		DalaliExpense: pick(patch.LotDalaliExpense, lot.LotDalaliExpense),
		OtherExpenses: pick(patch.OtherExpenses, lot.OtherExpenses),
		BrokerageRate: pick(patch.Brokerage, lot.Brokerage),
		FRKQty:        frkQty,
	})

	if err := s.lotLedger.SetCost(ctx, lotID, breakdown.NettAmount, patch); err != nil {
		return 0, err
	}
	return breakdown.NettAmount, nil
}

func (s *Service) latestFRKQty(ctx context.Context, lotID string) (float64, error) {
	shipments, err := s.shipments.ListByLot(ctx, lotID)
	if err != nil {
		return 0, err
	}
	// Shipments arrive oldest first; walk backwards for the latest FRK one.
	for i := len(shipments) - 1; i >= 0; i-- {
		sh := shipments[i]
		if sh.FRK && sh.FRKDispatch != nil && sh.FRKDispatch.Qty != nil {
			return *sh.FRKDispatch.Qty, nil
		}
	}
	return 0, nil
}

func pick(patched *float64, current float64) float64 {
	if patched != nil {
		return *patched
	}
	return current
}
