package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FRKDispatch is the by-product sub-record attached to a shipment. FRK
// completion (analytics) requires all five fields populated.
type FRKDispatch struct {
	Via         *string    `bson:"via,omitempty" json:"via,omitempty"`
	Qty         *float64   `bson:"qty,omitempty" json:"qty,omitempty"`
	Date        *time.Time `bson:"date,omitempty" json:"date,omitempty"`
	VehicleNo   *string    `bson:"vehicle_no,omitempty" json:"vehicle_no,omitempty"`
	Transporter *string    `bson:"transporter,omitempty" json:"transporter,omitempty"`
}

// Shipment is one recorded dispatch event against a lot.
type Shipment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID        string             `bson:"public_id" json:"public_id"`
	LotID           string             `bson:"lot_id" json:"lot_id"`
	DealID          string             `bson:"sauda_id" json:"sauda_id"`
	SentBoraCount   int                `bson:"sent_bora_count" json:"sent_bora_count"`
	ShippingDate    *time.Time         `bson:"shipping_date,omitempty" json:"shipping_date,omitempty"`
	ShippedVia      *string            `bson:"shipped_via,omitempty" json:"shipped_via,omitempty"`
	FlapStickerDate *time.Time         `bson:"flap_sticker_date,omitempty" json:"flap_sticker_date,omitempty"`
	FlapStickerVia  *string            `bson:"flap_sticker_via,omitempty" json:"flap_sticker_via,omitempty"`
	GatePassDate    *time.Time         `bson:"gate_pass_date,omitempty" json:"gate_pass_date,omitempty"`
	GatePassVia     *string            `bson:"gate_pass_via,omitempty" json:"gate_pass_via,omitempty"`
	FRK             bool               `bson:"frk" json:"frk"`
	FRKDispatch     *FRKDispatch       `bson:"frk_dispatch,omitempty" json:"frk_dispatch,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateShipmentRequest is the payload for recording a dispatch.
type CreateShipmentRequest struct {
	SentBoraCount   int          `json:"sent_bora_count"`
	ShippingDate    *time.Time   `json:"shipping_date,omitempty"`
	ShippedVia      *string      `json:"shipped_via,omitempty"`
	FlapStickerDate *time.Time   `json:"flap_sticker_date,omitempty"`
	FlapStickerVia  *string      `json:"flap_sticker_via,omitempty"`
	GatePassDate    *time.Time   `json:"gate_pass_date,omitempty"`
	GatePassVia     *string      `json:"gate_pass_via,omitempty"`
	FRK             bool         `json:"frk"`
	FRKDispatch     *FRKDispatch `json:"frk_dispatch,omitempty"`
}

// ShipmentPatch carries merge-semantics updates for a shipment. SentBoraCount
// is deliberately absent: correcting a count is a delete + re-create so the
// lot counters stay consistent.
type ShipmentPatch struct {
	ShippingDate    *time.Time   `json:"shipping_date,omitempty"`
	ShippedVia      *string      `json:"shipped_via,omitempty"`
	FlapStickerDate *time.Time   `json:"flap_sticker_date,omitempty"`
	FlapStickerVia  *string      `json:"flap_sticker_via,omitempty"`
	GatePassDate    *time.Time   `json:"gate_pass_date,omitempty"`
	GatePassVia     *string      `json:"gate_pass_via,omitempty"`
	FRK             *bool        `json:"frk,omitempty"`
	FRKDispatch     *FRKDispatch `json:"frk_dispatch,omitempty"`
}

// LotProjection is the read-only slice of a lot joined onto shipment reads
// for display convenience.
type LotProjection struct {
	LotID              string  `json:"lot_id"`
	RiceLotNo          *string `json:"rice_lot_no,omitempty"`
	TotalBoraCount     int     `json:"total_bora_count"`
	ShippedBoraCount   int     `json:"shipped_bora_count"`
	RemainingBoraCount int     `json:"remaining_bora_count"`
}

// ShipmentWithLot pairs a shipment with its owning lot's projection. The two
// reads are not fenced by a transaction; the projection may lag the lot.
type ShipmentWithLot struct {
	Shipment Shipment       `json:"shipment"`
	Lot      *LotProjection `json:"lot,omitempty"`
}
