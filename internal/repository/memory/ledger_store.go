package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// LedgerStore is an in-memory, append-only ledger store.
type LedgerStore struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
}

var _ repository.LedgerStore = (*LedgerStore)(nil)

// NewLedgerStore creates an empty in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

func (s *LedgerStore) Insert(_ context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *LedgerStore) ListByBroker(_ context.Context, brokerID string) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LedgerEntry
	for _, entry := range s.entries {
		if entry.BrokerID == brokerID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
