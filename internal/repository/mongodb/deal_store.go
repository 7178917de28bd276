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

// DealStore persists deals in the saudas collection.
type DealStore struct {
	coll *mongo.Collection
}

var _ repository.DealStore = (*DealStore)(nil)

func (s *DealStore) Insert(ctx context.Context, deal models.Deal) error {
	_, err := s.coll.InsertOne(ctx, deal)
	return mapErr("deal insert", err)
}

func (s *DealStore) FindByPublicID(ctx context.Context, publicID string) (*models.Deal, error) {
	var deal models.Deal
	err := s.coll.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&deal)
	if err != nil {
		return nil, mapErr("deal find", err)
	}
	return &deal, nil
}

func (s *DealStore) List(ctx context.Context) ([]models.Deal, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, mapErr("deal list", err)
	}
	var deals []models.Deal
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, mapErr("deal list decode", err)
	}
	return deals, nil
}

func (s *DealStore) SetStatus(ctx context.Context, publicID, status string, endAt *time.Time) error {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if endAt != nil {
		set["end_at"] = *endAt
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{"$set": set})
	if err != nil {
		return mapErr("deal set status", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *DealStore) Delete(ctx context.Context, publicID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"public_id": publicID})
	if err != nil {
		return mapErr("deal delete", err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
