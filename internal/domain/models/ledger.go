package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ledger entry types and their effect on broker running totals.
const (
	EntryTypeDebit      = "DEBIT"      // total_debits += amount
	EntryTypeCredit     = "CREDIT"     // total_credits += amount
	EntryTypeAdjustment = "ADJUSTMENT" // both totals += amount
)

// LedgerEntry is one append-only financial posting against a broker.
// DealName is denormalized for statement display.
type LedgerEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID    string             `bson:"public_id" json:"public_id"`
	BrokerID    string             `bson:"broker_id" json:"broker_id"`
	DealID      *string            `bson:"sauda_id,omitempty" json:"sauda_id,omitempty"`
	DealName    *string            `bson:"sauda_name,omitempty" json:"sauda_name,omitempty"`
	Date        time.Time          `bson:"date" json:"date"`
	EntryType   string             `bson:"entry_type" json:"entry_type"`
	Amount      float64            `bson:"amount" json:"amount"`
	PaymentMode *string            `bson:"payment_mode,omitempty" json:"payment_mode,omitempty"`
	Remarks     *string            `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// LedgerEntryRequest is the payload for posting a ledger entry.
type LedgerEntryRequest struct {
	DealID      *string    `json:"sauda_id,omitempty"`
	DealName    *string    `json:"sauda_name,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	EntryType   string     `json:"entry_type" binding:"required"`
	Amount      float64    `json:"amount" binding:"required"`
	PaymentMode *string    `json:"payment_mode,omitempty"`
	Remarks     *string    `json:"remarks,omitempty"`
}

// CostEstimateRequest drives the batch nett-amount pass over a deal's lots.
type CostEstimateRequest struct {
	LotIDs   []string  `json:"lot_ids" binding:"required"`
	BrokerID string    `json:"broker_id" binding:"required"`
	Expenses CostPatch `json:"expenses"`
}

// CostEstimateResult reports the persisted nett amounts and the aggregate
// posting made against the broker.
type CostEstimateResult struct {
	NettAmounts     map[string]float64 `json:"nett_amounts"`
	TotalNettAmount float64            `json:"total_nett_amount"`
	LedgerEntryID   string             `json:"ledger_entry_id"`
}
