package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// BrokerStore persists brokers. The unique broker_id index makes duplicate
// creation fail at insert time.
type BrokerStore struct {
	coll *mongo.Collection
}

var _ repository.BrokerStore = (*BrokerStore)(nil)

func (s *BrokerStore) Insert(ctx context.Context, broker models.Broker) error {
	_, err := s.coll.InsertOne(ctx, broker)
	return mapErr("broker insert", err)
}

func (s *BrokerStore) FindByBrokerID(ctx context.Context, brokerID string) (*models.Broker, error) {
	var broker models.Broker
	err := s.coll.FindOne(ctx, bson.M{"broker_id": brokerID}).Decode(&broker)
	if err != nil {
		return nil, mapErr("broker find", err)
	}
	return &broker, nil
}

func (s *BrokerStore) List(ctx context.Context) ([]models.Broker, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "broker_id", Value: 1}}))
	if err != nil {
		return nil, mapErr("broker list", err)
	}
	var brokers []models.Broker
	if err := cursor.All(ctx, &brokers); err != nil {
		return nil, mapErr("broker list decode", err)
	}
	return brokers, nil
}

func (s *BrokerStore) AppendDeal(ctx context.Context, brokerID, dealID string) error {
	return s.update(ctx, brokerID, bson.M{
		"$push": bson.M{"sauda_ids": dealID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *BrokerStore) RemoveDeal(ctx context.Context, brokerID, dealID string) error {
	return s.update(ctx, brokerID, bson.M{
		"$pull": bson.M{"sauda_ids": dealID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *BrokerStore) ApplyTotals(ctx context.Context, brokerID string, credits, debits float64) error {
	return s.update(ctx, brokerID, bson.M{
		"$inc": bson.M{"total_credits": credits, "total_debits": debits},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *BrokerStore) update(ctx context.Context, brokerID string, update bson.M) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"broker_id": brokerID}, update)
	if err != nil {
		return mapErr("broker update", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
