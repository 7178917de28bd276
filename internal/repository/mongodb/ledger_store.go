package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// LedgerStore persists broker ledger entries. Append-only: no update or
// delete operations exist on this collection.
type LedgerStore struct {
	coll *mongo.Collection
}

var _ repository.LedgerStore = (*LedgerStore)(nil)

func (s *LedgerStore) Insert(ctx context.Context, entry models.LedgerEntry) error {
	_, err := s.coll.InsertOne(ctx, entry)
	return mapErr("ledger insert", err)
}

func (s *LedgerStore) ListByBroker(ctx context.Context, brokerID string) ([]models.LedgerEntry, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"broker_id": brokerID}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, mapErr("ledger list", err)
	}
	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, mapErr("ledger list decode", err)
	}
	return entries, nil
}
