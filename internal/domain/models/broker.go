package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broker is a trading intermediary. BrokerID is the user-supplied unique
// identifier; running totals are maintained by ledger postings only.
type Broker struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BrokerID     string             `bson:"broker_id" json:"broker_id"`
	Name         string             `bson:"name" json:"name"`
	DealIDs      []string           `bson:"sauda_ids" json:"sauda_ids"`
	TotalCredits float64            `bson:"total_credits" json:"total_credits"`
	TotalDebits  float64            `bson:"total_debits" json:"total_debits"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateBrokerRequest is the payload for registering a broker.
type CreateBrokerRequest struct {
	BrokerID string `json:"broker_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
}
