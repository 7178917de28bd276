package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/memory"
)

type fixture struct {
	svc       *Service
	deals     *memory.DealStore
	lots      *memory.LotStore
	shipments *memory.ShipmentStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		deals:     memory.NewDealStore(),
		lots:      memory.NewLotStore(),
		shipments: memory.NewShipmentStore(),
	}
	f.svc = NewService(f.deals, f.lots, f.shipments, nil)
	return f
}

func TestComputeDealAnalyticsZeroState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.deals.Insert(ctx, models.Deal{PublicID: "deal-1", TotalLots: 5}); err != nil {
		t.Fatalf("seeding deal: %v", err)
	}

	out, err := f.svc.ComputeDealAnalytics(ctx, "deal-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if out.Bora.Shipped != 0 || out.Bora.Total != 0 {
		t.Errorf("bora = %+v, want zeroes", out.Bora)
	}
	if out.FlapSticker.Completed != 0 || out.FlapSticker.Total != 5 {
		t.Errorf("flap sticker = %+v, want {0 5}", out.FlapSticker)
	}
	if out.GatePass.Completed != 0 || out.GatePass.Total != 5 {
		t.Errorf("gate pass = %+v, want {0 5}", out.GatePass)
	}
	if out.FRK != nil {
		t.Errorf("frk block = %+v, want absent", out.FRK)
	}
}

func TestComputeDealAnalyticsUnknownDeal(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.ComputeDealAnalytics(context.Background(), "deal-missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestComputeDealAnalyticsFold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.deals.Insert(ctx, models.Deal{PublicID: "deal-1", TotalLots: 2}); err != nil {
		t.Fatalf("seeding deal: %v", err)
	}
	now := time.Now().UTC()
	err := f.lots.InsertMany(ctx, []models.Lot{
		{PublicID: "lot-1", DealID: "deal-1", TotalBoraCount: 100, ShippedBoraCount: 30, RemainingBoraCount: 70, ShipmentIDs: []string{}, CreatedAt: now},
		{PublicID: "lot-2", DealID: "deal-1", TotalBoraCount: 50, ShippedBoraCount: 20, RemainingBoraCount: 30, ShipmentIDs: []string{}, CreatedAt: now.Add(time.Millisecond)},
	})
	if err != nil {
		t.Fatalf("seeding lots: %v", err)
	}

	via := "truck"
	qty := 12.5
	vehicle := "UP32-1234"
	transporter := "Sharma Logistics"

	// lot-1: flap sticker done, nothing else.
	if err := f.shipments.Insert(ctx, models.Shipment{
		PublicID: "ship-1", LotID: "lot-1", DealID: "deal-1",
		FlapStickerDate: &now, FlapStickerVia: &via,
	}); err != nil {
		t.Fatalf("seeding shipment: %v", err)
	}
	// lot-2: gate pass done plus a fully populated by-product dispatch.
	if err := f.shipments.Insert(ctx, models.Shipment{
		PublicID: "ship-2", LotID: "lot-2", DealID: "deal-1",
		GatePassDate: &now, GatePassVia: &via,
		FRK: true,
		FRKDispatch: &models.FRKDispatch{
			Via: &via, Qty: &qty, Date: &now, VehicleNo: &vehicle, Transporter: &transporter,
		},
	}); err != nil {
		t.Fatalf("seeding shipment: %v", err)
	}

	out, err := f.svc.ComputeDealAnalytics(ctx, "deal-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if out.Bora.Shipped != 50 || out.Bora.Total != 150 {
		t.Errorf("bora = %+v, want {50 150}", out.Bora)
	}
	if out.FlapSticker.Completed != 1 || out.FlapSticker.Total != 2 {
		t.Errorf("flap sticker = %+v, want {1 2}", out.FlapSticker)
	}
	if out.GatePass.Completed != 1 || out.GatePass.Total != 2 {
		t.Errorf("gate pass = %+v, want {1 2}", out.GatePass)
	}
	if out.FRK == nil {
		t.Fatal("frk block absent despite an FRK shipment")
	}
	if out.FRK.Completed != 1 || out.FRK.Total != 1 {
		t.Errorf("frk = %+v, want {1 1}", out.FRK)
	}
}

func TestComputeDealAnalyticsIncompleteFRKDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.deals.Insert(ctx, models.Deal{PublicID: "deal-1", TotalLots: 1}); err != nil {
		t.Fatalf("seeding deal: %v", err)
	}
	err := f.lots.InsertMany(ctx, []models.Lot{
		{PublicID: "lot-1", DealID: "deal-1", ShipmentIDs: []string{}, CreatedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("seeding lot: %v", err)
	}

	// Qty alone is not enough; all five dispatch fields are required.
	qty := 5.0
	if err := f.shipments.Insert(ctx, models.Shipment{
		PublicID: "ship-1", LotID: "lot-1", DealID: "deal-1",
		FRK:         true,
		FRKDispatch: &models.FRKDispatch{Qty: &qty},
	}); err != nil {
		t.Fatalf("seeding shipment: %v", err)
	}

	out, err := f.svc.ComputeDealAnalytics(ctx, "deal-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out.FRK == nil {
		t.Fatal("frk block absent")
	}
	if out.FRK.Completed != 0 || out.FRK.Total != 1 {
		t.Errorf("frk = %+v, want {0 1}", out.FRK)
	}
}
