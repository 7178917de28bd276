package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FRKBheja records the by-product quantity diverted from a lot.
type FRKBheja struct {
	BhejaVia  *string    `bson:"bheja_via,omitempty" json:"bheja_via,omitempty"`
	BhejaQty  float64    `bson:"bheja_qty" json:"bheja_qty"`
	BhejaDate *time.Time `bson:"bheja_date,omitempty" json:"bheja_date,omitempty"`
}

// Lot is one shippable unit within a deal. Bora counters obey
// remaining = total - sum(sent over active shipments); all counter writes go
// through single-document atomic updates in the repository.
type Lot struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID           string             `bson:"public_id" json:"public_id"`
	DealID             string             `bson:"sauda_id" json:"sauda_id"`
	RiceLotNo          *string            `bson:"rice_lot_no,omitempty" json:"rice_lot_no,omitempty"`
	TotalBoraCount     int                `bson:"total_bora_count" json:"total_bora_count"`
	ShippedBoraCount   int                `bson:"shipped_bora_count" json:"shipped_bora_count"`
	RemainingBoraCount int                `bson:"remaining_bora_count" json:"remaining_bora_count"`
	IsFullyShipped     bool               `bson:"is_fully_shipped" json:"is_fully_shipped"`
	Qtl                float64            `bson:"qtl" json:"qtl"`
	RiceBagsQuantity   int                `bson:"rice_bags_quantity" json:"rice_bags_quantity"`
	MoistureCut        float64            `bson:"moisture_cut" json:"moisture_cut"`
	RiceDepositCentre  *string            `bson:"rice_deposit_centre,omitempty" json:"rice_deposit_centre,omitempty"`
	RicePassDate       *time.Time         `bson:"rice_pass_date,omitempty" json:"rice_pass_date,omitempty"`
	FRK                bool               `bson:"frk" json:"frk"`
	FRKBheja           *FRKBheja          `bson:"frk_bheja,omitempty" json:"frk_bheja,omitempty"`
	QIExpense          float64            `bson:"qi_expense" json:"qi_expense"`
	LotDalaliExpense   float64            `bson:"lot_dalali_expense" json:"lot_dalali_expense"`
	OtherExpenses      float64            `bson:"other_expenses" json:"other_expenses"`
	Brokerage          float64            `bson:"brokerage" json:"brokerage"`
	NettAmount         *float64           `bson:"nett_amount,omitempty" json:"nett_amount,omitempty"`
	ShipmentIDs        []string           `bson:"shipment_ids" json:"shipment_ids"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// LotPatch carries merge-semantics updates: only non-nil fields are applied.
// A non-nil TotalBoraCount resets the lot's capacity and invalidates its
// shipments (they were recorded against the old total).
type LotPatch struct {
	RiceLotNo         *string    `json:"rice_lot_no,omitempty"`
	TotalBoraCount    *int       `json:"total_bora_count,omitempty"`
	Qtl               *float64   `json:"qtl,omitempty"`
	RiceBagsQuantity  *int       `json:"rice_bags_quantity,omitempty"`
	MoistureCut       *float64   `json:"moisture_cut,omitempty"`
	RiceDepositCentre *string    `json:"rice_deposit_centre,omitempty"`
	RicePassDate      *time.Time `json:"rice_pass_date,omitempty"`
	FRK               *bool      `json:"frk,omitempty"`
	FRKBheja          *FRKBheja  `json:"frk_bheja,omitempty"`
	QIExpense         *float64   `json:"qi_expense,omitempty"`
	LotDalaliExpense  *float64   `json:"lot_dalali_expense,omitempty"`
	OtherExpenses     *float64   `json:"other_expenses,omitempty"`
	Brokerage         *float64   `json:"brokerage,omitempty"`
}

// CostPatch is the per-lot expense patch applied during a cost-estimate pass.
type CostPatch struct {
	MoistureCut      *float64 `json:"moisture_cut,omitempty"`
	QIExpense        *float64 `json:"qi_expense,omitempty"`
	LotDalaliExpense *float64 `json:"lot_dalali_expense,omitempty"`
	OtherExpenses    *float64 `json:"other_expenses,omitempty"`
	Brokerage        *float64 `json:"brokerage,omitempty"`
}
