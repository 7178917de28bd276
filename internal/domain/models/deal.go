package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deal statuses. UpdateDealStatus stores whatever string the caller supplies,
// so these constants cover the known lifecycle, not an exhaustive enum.
const (
	DealStatusInitiated      = "INITIATED"
	DealStatusReadyForPickup = "READY_FOR_PICKUP"
	DealStatusInTransport    = "IN_TRANSPORT"
	DealStatusShipped        = "SHIPPED"
	DealStatusCompleted      = "COMPLETED"
	DealStatusCancelled      = "CANCELLED"
)

// Deal is one purchase agreement ("sauda"). PublicID is the externally
// addressable identifier; the Mongo _id never leaves the repository layer.
type Deal struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID      string             `bson:"public_id" json:"public_id"`
	Name          string             `bson:"name" json:"name"`
	BrokerID      string             `bson:"broker_id" json:"broker_id"`
	PartyName     string             `bson:"party_name" json:"party_name"`
	PurchaseDate  time.Time          `bson:"purchase_date" json:"purchase_date"`
	TotalLots     int                `bson:"total_lots" json:"total_lots"`
	Rate          float64            `bson:"rate" json:"rate"`
	RiceType      *string            `bson:"rice_type,omitempty" json:"rice_type,omitempty"`
	RiceAgreement *string            `bson:"rice_agreement,omitempty" json:"rice_agreement,omitempty"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	EndAt         *time.Time         `bson:"end_at,omitempty" json:"end_at,omitempty"`
}

// CreateDealRequest is the payload for spawning a deal and its lots.
type CreateDealRequest struct {
	Name          string    `json:"name" binding:"required"`
	BrokerID      string    `json:"broker_id" binding:"required"`
	PartyName     string    `json:"party_name" binding:"required"`
	PurchaseDate  time.Time `json:"purchase_date" binding:"required"`
	TotalLots     int       `json:"total_lots"`
	Rate          float64   `json:"rate" binding:"required"`
	RiceType      *string   `json:"rice_type,omitempty"`
	RiceAgreement *string   `json:"rice_agreement,omitempty"`
}

// UpdateDealStatusRequest carries a verbatim status string.
type UpdateDealStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
