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

// ShipmentStore is an in-memory shipment store.
type ShipmentStore struct {
	mu        sync.Mutex
	shipments map[string]*models.Shipment
}

var _ repository.ShipmentStore = (*ShipmentStore)(nil)

// NewShipmentStore creates an empty in-memory shipment store.
func NewShipmentStore() *ShipmentStore {
	return &ShipmentStore{shipments: make(map[string]*models.Shipment)}
}

func (s *ShipmentStore) Insert(_ context.Context, shipment models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := shipment
	s.shipments[shipment.PublicID] = &sh
	return nil
}

func (s *ShipmentStore) FindByPublicID(_ context.Context, publicID string) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shipment, ok := s.shipments[publicID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	sh := *shipment
	return &sh, nil
}

func (s *ShipmentStore) ListByLot(_ context.Context, lotID string) ([]models.Shipment, error) {
	return s.filtered(func(sh *models.Shipment) bool { return sh.LotID == lotID })
}

func (s *ShipmentStore) ListByDeal(_ context.Context, dealID string) ([]models.Shipment, error) {
	return s.filtered(func(sh *models.Shipment) bool { return sh.DealID == dealID })
}

func (s *ShipmentStore) List(_ context.Context) ([]models.Shipment, error) {
	return s.filtered(func(*models.Shipment) bool { return true })
}

func (s *ShipmentStore) filtered(keep func(*models.Shipment) bool) ([]models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Shipment
	for _, shipment := range s.shipments {
		if keep(shipment) {
			out = append(out, *shipment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *ShipmentStore) ApplyPatch(_ context.Context, publicID string, patch models.ShipmentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shipment, ok := s.shipments[publicID]
	if !ok {
		return errs.ErrNotFound
	}
	if patch.ShippingDate != nil {
		shipment.ShippingDate = patch.ShippingDate
	}
	if patch.ShippedVia != nil {
		shipment.ShippedVia = patch.ShippedVia
	}
	if patch.FlapStickerDate != nil {
		shipment.FlapStickerDate = patch.FlapStickerDate
	}
	if patch.FlapStickerVia != nil {
		shipment.FlapStickerVia = patch.FlapStickerVia
	}
	if patch.GatePassDate != nil {
		shipment.GatePassDate = patch.GatePassDate
	}
	if patch.GatePassVia != nil {
		shipment.GatePassVia = patch.GatePassVia
	}
	if patch.FRK != nil {
		shipment.FRK = *patch.FRK
	}
	if patch.FRKDispatch != nil {
		shipment.FRKDispatch = patch.FRKDispatch
	}
	shipment.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *ShipmentStore) Delete(_ context.Context, publicID string) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shipment, ok := s.shipments[publicID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	delete(s.shipments, publicID)
	sh := *shipment
	return &sh, nil
}

func (s *ShipmentStore) DeleteByLot(_ context.Context, lotID string) (int64, error) {
	return s.deleteWhere(func(sh *models.Shipment) bool { return sh.LotID == lotID })
}

func (s *ShipmentStore) DeleteByDeal(_ context.Context, dealID string) (int64, error) {
	return s.deleteWhere(func(sh *models.Shipment) bool { return sh.DealID == dealID })
}

func (s *ShipmentStore) deleteWhere(match func(*models.Shipment) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, shipment := range s.shipments {
		if match(shipment) {
			delete(s.shipments, id)
			n++
		}
	}
	return n, nil
}
