package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository"
)

// LotStore persists lots. All counter mutations are issued as one UpdateOne
// so concurrent shipment activity cannot lose updates.
type LotStore struct {
	coll *mongo.Collection
}

var _ repository.LotStore = (*LotStore)(nil)

func (s *LotStore) InsertMany(ctx context.Context, lots []models.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	docs := make([]interface{}, len(lots))
	for i := range lots {
		docs[i] = lots[i]
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return mapErr("lot insert many", err)
}

func (s *LotStore) FindByPublicID(ctx context.Context, publicID string) (*models.Lot, error) {
	var lot models.Lot
	err := s.coll.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&lot)
	if err != nil {
		return nil, mapErr("lot find", err)
	}
	return &lot, nil
}

func (s *LotStore) ListByDeal(ctx context.Context, dealID string) ([]models.Lot, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"sauda_id": dealID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, mapErr("lot list", err)
	}
	var lots []models.Lot
	if err := cursor.All(ctx, &lots); err != nil {
		return nil, mapErr("lot list decode", err)
	}
	return lots, nil
}

// ApplyShipment is the guarded consume: the filter requires enough remaining
// capacity, so a violating shipment never mutates the document.
func (s *LotStore) ApplyShipment(ctx context.Context, lotID, shipmentID string, sentBoraCount int) error {
	filter := bson.M{
		"public_id":            lotID,
		"remaining_bora_count": bson.M{"$gte": sentBoraCount},
	}
	update := bson.M{
		"$inc":  bson.M{"remaining_bora_count": -sentBoraCount, "shipped_bora_count": sentBoraCount},
		"$push": bson.M{"shipment_ids": shipmentID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr("lot apply shipment", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing lot from an over-capacity request.
		if _, err := s.FindByPublicID(ctx, lotID); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		return errs.ErrCapacityExceeded
	}
	return nil
}

func (s *LotStore) ReverseShipment(ctx context.Context, lotID, shipmentID string, sentBoraCount int) error {
	update := bson.M{
		"$inc":  bson.M{"remaining_bora_count": sentBoraCount, "shipped_bora_count": -sentBoraCount},
		"$pull": bson.M{"shipment_ids": shipmentID},
		"$set":  bson.M{"updated_at": time.Now().UTC(), "is_fully_shipped": false},
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"public_id": lotID}, update)
	if err != nil {
		return mapErr("lot reverse shipment", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *LotStore) ResetCapacity(ctx context.Context, lotID string, newTotal int) error {
	update := bson.M{"$set": bson.M{
		"total_bora_count":     newTotal,
		"remaining_bora_count": newTotal,
		"shipped_bora_count":   0,
		"is_fully_shipped":     false,
		"shipment_ids":         []string{},
		"updated_at":           time.Now().UTC(),
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"public_id": lotID}, update)
	if err != nil {
		return mapErr("lot reset capacity", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *LotStore) SetFullyShipped(ctx context.Context, lotID string, fullyShipped bool) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"public_id": lotID},
		bson.M{"$set": bson.M{"is_fully_shipped": fullyShipped, "updated_at": time.Now().UTC()}})
	if err != nil {
		return mapErr("lot set fully shipped", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *LotStore) ApplyPatch(ctx context.Context, lotID string, patch models.LotPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.RiceLotNo != nil {
		set["rice_lot_no"] = *patch.RiceLotNo
	}
	if patch.Qtl != nil {
		set["qtl"] = *patch.Qtl
	}
	if patch.RiceBagsQuantity != nil {
		set["rice_bags_quantity"] = *patch.RiceBagsQuantity
	}
	if patch.MoistureCut != nil {
		set["moisture_cut"] = *patch.MoistureCut
	}
	if patch.RiceDepositCentre != nil {
		set["rice_deposit_centre"] = *patch.RiceDepositCentre
	}
	if patch.RicePassDate != nil {
		set["rice_pass_date"] = *patch.RicePassDate
	}
	if patch.FRK != nil {
		set["frk"] = *patch.FRK
	}
	if patch.FRKBheja != nil {
		set["frk_bheja"] = *patch.FRKBheja
	}
	if patch.QIExpense != nil {
		set["qi_expense"] = *patch.QIExpense
	}
	if patch.LotDalaliExpense != nil {
		set["lot_dalali_expense"] = *patch.LotDalaliExpense
	}
	if patch.OtherExpenses != nil {
		set["other_expenses"] = *patch.OtherExpenses
	}
	if patch.Brokerage != nil {
		set["brokerage"] = *patch.Brokerage
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"public_id": lotID}, bson.M{"$set": set})
	if err != nil {
		return mapErr("lot apply patch", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *LotStore) SetCost(ctx context.Context, lotID string, nettAmount float64, patch models.CostPatch) error {
	set := bson.M{"nett_amount": nettAmount, "updated_at": time.Now().UTC()}
	if patch.MoistureCut != nil {
		set["moisture_cut"] = *patch.MoistureCut
	}
	if patch.QIExpense != nil {
		set["qi_expense"] = *patch.QIExpense
	}
	if patch.LotDalaliExpense != nil {
		set["lot_dalali_expense"] = *patch.LotDalaliExpense
	}
	if patch.OtherExpenses != nil {
		set["other_expenses"] = *patch.OtherExpenses
	}
	if patch.Brokerage != nil {
		set["brokerage"] = *patch.Brokerage
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"public_id": lotID}, bson.M{"$set": set})
	if err != nil {
		return mapErr("lot set cost", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *LotStore) DeleteByDeal(ctx context.Context, dealID string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"sauda_id": dealID})
	return mapErr("lot delete by deal", err)
}
