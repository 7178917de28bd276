// Package mongodb implements the repository contracts on the MongoDB driver.
// Counter bookkeeping relies on single-document atomicity: every lot counter
// change is one guarded UpdateOne, never a read-modify-write.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
)

const (
	brokersCollection   = "brokers"
	dealsCollection     = "saudas"
	lotsCollection      = "lots"
	shipmentsCollection = "shipments"
	ledgerCollection    = "broker_ledger"
)

// Client owns the mongo connection and hands out entity stores bound to it.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects, pings, and ensures the unique broker-id index.
func New(ctx context.Context, uri, dbName string) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)

	// Duplicate broker ids must be rejected at the store level.
	_, err = db.Collection(brokersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "broker_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure broker_id index: %w", err)
	}

	return &Client{client: client, db: db}, nil
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Brokers returns the broker store.
func (c *Client) Brokers() *BrokerStore {
	return &BrokerStore{coll: c.db.Collection(brokersCollection)}
}

// Deals returns the deal store.
func (c *Client) Deals() *DealStore {
	return &DealStore{coll: c.db.Collection(dealsCollection)}
}

// Lots returns the lot store.
func (c *Client) Lots() *LotStore {
	return &LotStore{coll: c.db.Collection(lotsCollection)}
}

// Shipments returns the shipment store.
func (c *Client) Shipments() *ShipmentStore {
	return &ShipmentStore{coll: c.db.Collection(shipmentsCollection)}
}

// Ledger returns the broker ledger store.
func (c *Client) Ledger() *LedgerStore {
	return &LedgerStore{coll: c.db.Collection(ledgerCollection)}
}

// mapErr translates driver errors into the shared taxonomy.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrDuplicateKey
	}
	return errs.Storage(op, err)
}
