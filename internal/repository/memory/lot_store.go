package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// LotStore is an in-memory lot store. The mutex stands in for Mongo's
// per-document atomicity: every counter mutation happens under one lock.
type LotStore struct {
	mu   sync.Mutex
	lots map[string]*models.Lot
}

var _ repository.LotStore = (*LotStore)(nil)

// NewLotStore creates an empty in-memory lot store.
func NewLotStore() *LotStore {
	return &LotStore{lots: make(map[string]*models.Lot)}
}

func (s *LotStore) InsertMany(_ context.Context, lots []models.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range lots {
		l := lots[i]
		s.lots[l.PublicID] = &l
	}
	return nil
}

func (s *LotStore) FindByPublicID(_ context.Context, publicID string) (*models.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[publicID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyLot(lot), nil
}

func (s *LotStore) ListByDeal(_ context.Context, dealID string) ([]models.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Lot
	for _, lot := range s.lots {
		if lot.DealID == dealID {
			out = append(out, *copyLot(lot))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *LotStore) ApplyShipment(_ context.Context, lotID, shipmentID string, sentBoraCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok {
		return errs.ErrNotFound
	}
	if lot.RemainingBoraCount < sentBoraCount {
		return errs.ErrCapacityExceeded
	}
	lot.RemainingBoraCount -= sentBoraCount
	lot.ShippedBoraCount += sentBoraCount
	lot.ShipmentIDs = append(lot.ShipmentIDs, shipmentID)
	lot.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *LotStore) ReverseShipment(_ context.Context, lotID, shipmentID string, sentBoraCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok {
		return errs.ErrNotFound
	}
	lot.RemainingBoraCount += sentBoraCount
	lot.ShippedBoraCount -= sentBoraCount
	lot.IsFullyShipped = false
	kept := lot.ShipmentIDs[:0]
	for _, id := range lot.ShipmentIDs {
		if id != shipmentID {
			kept = append(kept, id)
		}
	}
	lot.ShipmentIDs = kept
	lot.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *LotStore) ResetCapacity(_ context.Context, lotID string, newTotal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok {
		return errs.ErrNotFound
	}
	lot.TotalBoraCount = newTotal
	lot.RemainingBoraCount = newTotal
	lot.ShippedBoraCount = 0
	lot.IsFullyShipped = false
	lot.ShipmentIDs = []string{}
	lot.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *LotStore) SetFullyShipped(_ context.Context, lotID string, fullyShipped bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok {
		return errs.ErrNotFound
	}
	lot.IsFullyShipped = fullyShipped
	lot.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *LotStore) ApplyPatch(_ context.Context, lotID string, patch models.LotPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok {
		return errs.ErrNotFound
	}
	if patch.RiceLotNo != nil {
		lot.RiceLotNo = patch.RiceLotNo
	}
	if patch.Qtl != nil {
		lot.Qtl = *patch.Qtl
	}
	if patch.RiceBagsQuantity != nil {
		lot.RiceBagsQuantity = *patch.RiceBagsQuantity
	}
	if patch.MoistureCut != nil {
		lot.MoistureCut = *patch.MoistureCut
	}
	if patch.RiceDepositCentre != nil {
		lot.RiceDepositCentre = patch.RiceDepositCentre
	}
	if patch.RicePassDate != nil {
		lot.RicePassDate = patch.RicePassDate
	}
	if patch.FRK != nil {
		lot.FRK = *patch.FRK
	}
	if patch.FRKBheja != nil {
		lot.FRKBheja = patch.FRKBheja
	}
	if patch.QIExpense != nil {
		lot.QIExpense = *patch.QIExpense
	}
	if patch.LotDalaliExpense != nil {
		lot.LotDalaliExpense = *patch.LotDalaliExpense
	}
	if patch.OtherExpenses != nil {
		lot.OtherExpenses = *patch.OtherExpenses
	}
	if patch.Brokerage != nil {
		lot.Brokerage = *patch.Brokerage
	}
	lot.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *LotStore) SetCost(_ context.Context, lotID string, nettAmount float64, patch models.CostPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok {
		return errs.ErrNotFound
	}
	nett := nettAmount
	lot.NettAmount = &nett
	if patch.MoistureCut != nil {
		lot.MoistureCut = *patch.MoistureCut
	}
	if patch.QIExpense != nil {
		lot.QIExpense = *patch.QIExpense
	}
	if patch.LotDalaliExpense != nil {
		lot.LotDalaliExpense = *patch.LotDalaliExpense
	}
	if patch.OtherExpenses != nil {
		lot.OtherExpenses = *patch.OtherExpenses
	}
	if patch.Brokerage != nil {
		lot.Brokerage = *patch.Brokerage
	}
	lot.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *LotStore) DeleteByDeal(_ context.Context, dealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, lot := range s.lots {
		if lot.DealID == dealID {
			delete(s.lots, id)
		}
	}
	return nil
}

func copyLot(lot *models.Lot) *models.Lot {
	l := *lot
	l.ShipmentIDs = append([]string(nil), lot.ShipmentIDs...)
	return &l
}
