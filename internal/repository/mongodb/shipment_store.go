package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// ShipmentStore persists shipments.
type ShipmentStore struct {
	coll *mongo.Collection
}

var _ repository.ShipmentStore = (*ShipmentStore)(nil)

func (s *ShipmentStore) Insert(ctx context.Context, shipment models.Shipment) error {
	_, err := s.coll.InsertOne(ctx, shipment)
	return mapErr("shipment insert", err)
}

func (s *ShipmentStore) FindByPublicID(ctx context.Context, publicID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.coll.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&shipment)
	if err != nil {
		return nil, mapErr("shipment find", err)
	}
	return &shipment, nil
}

func (s *ShipmentStore) ListByLot(ctx context.Context, lotID string) ([]models.Shipment, error) {
	return s.list(ctx, bson.M{"lot_id": lotID})
}

func (s *ShipmentStore) ListByDeal(ctx context.Context, dealID string) ([]models.Shipment, error) {
	return s.list(ctx, bson.M{"sauda_id": dealID})
}

func (s *ShipmentStore) List(ctx context.Context) ([]models.Shipment, error) {
	return s.list(ctx, bson.M{})
}

func (s *ShipmentStore) list(ctx context.Context, filter bson.M) ([]models.Shipment, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, mapErr("shipment list", err)
	}
	var shipments []models.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, mapErr("shipment list decode", err)
	}
	return shipments, nil
}

func (s *ShipmentStore) ApplyPatch(ctx context.Context, publicID string, patch models.ShipmentPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.ShippingDate != nil {
		set["shipping_date"] = *patch.ShippingDate
	}
	if patch.ShippedVia != nil {
		set["shipped_via"] = *patch.ShippedVia
	}
	if patch.FlapStickerDate != nil {
		set["flap_sticker_date"] = *patch.FlapStickerDate
	}
	if patch.FlapStickerVia != nil {
		set["flap_sticker_via"] = *patch.FlapStickerVia
	}
	if patch.GatePassDate != nil {
		set["gate_pass_date"] = *patch.GatePassDate
	}
	if patch.GatePassVia != nil {
		set["gate_pass_via"] = *patch.GatePassVia
	}
	if patch.FRK != nil {
		set["frk"] = *patch.FRK
	}
	if patch.FRKDispatch != nil {
		set["frk_dispatch"] = *patch.FRKDispatch
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{"$set": set})
	if err != nil {
		return mapErr("shipment apply patch", err)
	}
	if res.MatchedCount == 0 {
		return mapErr("shipment apply patch", mongo.ErrNoDocuments)
	}
	return nil
}

// Delete removes the shipment and hands back the deleted document so the
// caller can re-credit the owning lot with its recorded count.
func (s *ShipmentStore) Delete(ctx context.Context, publicID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.coll.FindOneAndDelete(ctx, bson.M{"public_id": publicID}).Decode(&shipment)
	if err != nil {
		return nil, mapErr("shipment delete", err)
	}
	return &shipment, nil
}

func (s *ShipmentStore) DeleteByLot(ctx context.Context, lotID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"lot_id": lotID})
	if err != nil {
		return 0, mapErr("shipment delete by lot", err)
	}
	return res.DeletedCount, nil
}

func (s *ShipmentStore) DeleteByDeal(ctx context.Context, dealID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"sauda_id": dealID})
	if err != nil {
		return 0, mapErr("shipment delete by deal", err)
	}
	return res.DeletedCount, nil
}
