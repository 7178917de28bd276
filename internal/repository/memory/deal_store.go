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

// DealStore is an in-memory deal store.
type DealStore struct {
	mu    sync.Mutex
	deals map[string]*models.Deal
}

var _ repository.DealStore = (*DealStore)(nil)

// NewDealStore creates an empty in-memory deal store.
func NewDealStore() *DealStore {
	return &DealStore{deals: make(map[string]*models.Deal)}
}

func (s *DealStore) Insert(_ context.Context, deal models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := deal
	s.deals[deal.PublicID] = &d
	return nil
}

func (s *DealStore) FindByPublicID(_ context.Context, publicID string) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal, ok := s.deals[publicID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	d := *deal
	return &d, nil
}

func (s *DealStore) List(_ context.Context) ([]models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Deal, 0, len(s.deals))
	for _, deal := range s.deals {
		out = append(out, *deal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *DealStore) SetStatus(_ context.Context, publicID, status string, endAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal, ok := s.deals[publicID]
	if !ok {
		return errs.ErrNotFound
	}
	deal.Status = status
	deal.UpdatedAt = time.Now().UTC()
	if endAt != nil {
		t := *endAt
		deal.EndAt = &t
	}
	return nil
}

func (s *DealStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[publicID]; !ok {
		return errs.ErrNotFound
	}
	delete(s.deals, publicID)
	return nil
}
