// Package memory provides in-process implementations of the repository
// contracts. They back the service tests and small demo setups; semantics
// (capacity guard, duplicate rejection, patch merging) mirror the mongodb
// backend exactly.
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

// BrokerStore is an in-memory broker store.
type BrokerStore struct {
	mu      sync.Mutex
	brokers map[string]*models.Broker
}

var _ repository.BrokerStore = (*BrokerStore)(nil)

// NewBrokerStore creates an empty in-memory broker store.
func NewBrokerStore() *BrokerStore {
	return &BrokerStore{brokers: make(map[string]*models.Broker)}
}

func (s *BrokerStore) Insert(_ context.Context, broker models.Broker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.brokers[broker.BrokerID]; exists {
		return errs.ErrDuplicateKey
	}
	b := broker
	s.brokers[broker.BrokerID] = &b
	return nil
}

func (s *BrokerStore) FindByBrokerID(_ context.Context, brokerID string) (*models.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	broker, ok := s.brokers[brokerID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	b := *broker
	b.DealIDs = append([]string(nil), broker.DealIDs...)
	return &b, nil
}

func (s *BrokerStore) List(_ context.Context) ([]models.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Broker, 0, len(s.brokers))
	for _, broker := range s.brokers {
		b := *broker
		b.DealIDs = append([]string(nil), broker.DealIDs...)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrokerID < out[j].BrokerID })
	return out, nil
}

func (s *BrokerStore) AppendDeal(_ context.Context, brokerID, dealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	broker, ok := s.brokers[brokerID]
	if !ok {
		return errs.ErrNotFound
	}
	broker.DealIDs = append(broker.DealIDs, dealID)
	broker.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *BrokerStore) RemoveDeal(_ context.Context, brokerID, dealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	broker, ok := s.brokers[brokerID]
	if !ok {
		return errs.ErrNotFound
	}
	kept := broker.DealIDs[:0]
	for _, id := range broker.DealIDs {
		if id != dealID {
			kept = append(kept, id)
		}
	}
	broker.DealIDs = kept
	broker.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *BrokerStore) ApplyTotals(_ context.Context, brokerID string, credits, debits float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	broker, ok := s.brokers[brokerID]
	if !ok {
		return errs.ErrNotFound
	}
	broker.TotalCredits += credits
	broker.TotalDebits += debits
	broker.UpdatedAt = time.Now().UTC()
	return nil
}
