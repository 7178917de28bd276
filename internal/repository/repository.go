// Package repository declares the persistence contracts implemented by the
// mongodb and memory backends.
package repository

import (
	"context"
	"time"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
)

// DealStore persists deals.
type DealStore interface {
	Insert(ctx context.Context, deal models.Deal) error
	FindByPublicID(ctx context.Context, publicID string) (*models.Deal, error)
	List(ctx context.Context) ([]models.Deal, error)
	// SetStatus stores the status string verbatim and bumps updated_at.
	SetStatus(ctx context.Context, publicID, status string, endAt *time.Time) error
	Delete(ctx context.Context, publicID string) error
}

// LotStore persists lots. Counter mutations are single-document atomic
// updates; ApplyShipment enforces the capacity guard in the same update.
type LotStore interface {
	InsertMany(ctx context.Context, lots []models.Lot) error
	FindByPublicID(ctx context.Context, publicID string) (*models.Lot, error)
	ListByDeal(ctx context.Context, dealID string) ([]models.Lot, error)
	// ApplyShipment decrements remaining, increments shipped and appends the
	// shipment id, guarded by remaining_bora_count >= sent. Returns
	// errs.ErrCapacityExceeded when the guard fails, errs.ErrNotFound when
	// the lot does not exist.
	ApplyShipment(ctx context.Context, lotID, shipmentID string, sentBoraCount int) error
	// ReverseShipment re-credits a deleted shipment's count and pulls its id.
	ReverseShipment(ctx context.Context, lotID, shipmentID string, sentBoraCount int) error
	// ResetCapacity sets total = remaining = newTotal, shipped = 0 and clears
	// the shipment list. The caller deletes the invalidated shipments.
	ResetCapacity(ctx context.Context, lotID string, newTotal int) error
	// SetFullyShipped refreshes the is_fully_shipped flag.
	SetFullyShipped(ctx context.Context, lotID string, fullyShipped bool) error
	// ApplyPatch merges the non-nil fields of patch into the lot.
	ApplyPatch(ctx context.Context, lotID string, patch models.LotPatch) error
	// SetCost persists a computed nett amount together with the expense patch.
	SetCost(ctx context.Context, lotID string, nettAmount float64, patch models.CostPatch) error
	DeleteByDeal(ctx context.Context, dealID string) error
}

// ShipmentStore persists shipments.
type ShipmentStore interface {
	Insert(ctx context.Context, shipment models.Shipment) error
	FindByPublicID(ctx context.Context, publicID string) (*models.Shipment, error)
	ListByLot(ctx context.Context, lotID string) ([]models.Shipment, error)
	ListByDeal(ctx context.Context, dealID string) ([]models.Shipment, error)
	// List returns every shipment; used by the reconciliation pass.
	List(ctx context.Context) ([]models.Shipment, error)
	ApplyPatch(ctx context.Context, publicID string, patch models.ShipmentPatch) error
	// Delete removes the shipment and returns it, or errs.ErrNotFound when it
	// was already gone.
	Delete(ctx context.Context, publicID string) (*models.Shipment, error)
	DeleteByLot(ctx context.Context, lotID string) (int64, error)
	DeleteByDeal(ctx context.Context, dealID string) (int64, error)
}

// BrokerStore persists brokers. Insert must reject duplicate broker ids with
// errs.ErrDuplicateKey without touching the existing record.
type BrokerStore interface {
	Insert(ctx context.Context, broker models.Broker) error
	FindByBrokerID(ctx context.Context, brokerID string) (*models.Broker, error)
	List(ctx context.Context) ([]models.Broker, error)
	AppendDeal(ctx context.Context, brokerID, dealID string) error
	RemoveDeal(ctx context.Context, brokerID, dealID string) error
	// ApplyTotals atomically increments the running totals.
	ApplyTotals(ctx context.Context, brokerID string, credits, debits float64) error
}

// LedgerStore persists broker ledger entries (append-only).
type LedgerStore interface {
	Insert(ctx context.Context, entry models.LedgerEntry) error
	ListByBroker(ctx context.Context, brokerID string) ([]models.LedgerEntry, error)
}
