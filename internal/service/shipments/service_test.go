package shipments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/memory"
	"github.com/nkhandelwal3/sauda-backend/internal/service/lots"
	"github.com/nkhandelwal3/sauda-backend/pkg/clients/notify"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.StatusEvent
}

func (n *captureNotifier) PublishStatusChange(_ context.Context, event notify.StatusEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

type fixture struct {
	svc       *Service
	deals     *memory.DealStore
	lotStore  *memory.LotStore
	shipments *memory.ShipmentStore
	notifier  *captureNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		deals:     memory.NewDealStore(),
		lotStore:  memory.NewLotStore(),
		shipments: memory.NewShipmentStore(),
		notifier:  &captureNotifier{},
	}
	lotLedger := lots.NewService(f.lotStore, f.shipments, nil)
	f.svc = NewService(f.shipments, f.deals, lotLedger, f.notifier, nil)
	return f
}

func (f *fixture) seedDeal(t *testing.T, dealID, status string) {
	t.Helper()
	err := f.deals.Insert(context.Background(), models.Deal{
		PublicID: dealID,
		Name:     "Test Sauda",
		BrokerID: "broker-1",
		Rate:     2000,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("seeding deal: %v", err)
	}
}

func (f *fixture) seedLot(t *testing.T, lotID, dealID string, total int) {
	t.Helper()
	err := f.lotStore.InsertMany(context.Background(), []models.Lot{{
		PublicID:           lotID,
		DealID:             dealID,
		TotalBoraCount:     total,
		RemainingBoraCount: total,
		ShipmentIDs:        []string{},
		CreatedAt:          time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("seeding lot: %v", err)
	}
}

func TestCreateConsumesCapacityAndPushesStatus(t *testing.T) {
	startingStatuses := []string{
		models.DealStatusInitiated,
		models.DealStatusReadyForPickup,
		models.DealStatusShipped,
	}

	for _, status := range startingStatuses {
		t.Run(status, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.seedDeal(t, "deal-1", status)
			f.seedLot(t, "lot-1", "deal-1", 100)

			shipment, err := f.svc.Create(ctx, "deal-1", "lot-1", models.CreateShipmentRequest{SentBoraCount: 40})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if shipment.PublicID == "" {
				t.Fatal("shipment has no public id")
			}

			lot, _ := f.lotStore.FindByPublicID(ctx, "lot-1")
			if lot.RemainingBoraCount != 60 || lot.ShippedBoraCount != 40 {
				t.Errorf("lot counters = %d/%d, want 60 remaining / 40 shipped",
					lot.RemainingBoraCount, lot.ShippedBoraCount)
			}

			deal, _ := f.deals.FindByPublicID(ctx, "deal-1")
			if deal.Status != models.DealStatusInTransport {
				t.Errorf("deal status = %s, want IN_TRANSPORT", deal.Status)
			}
			if len(f.notifier.events) != 1 || f.notifier.events[0].Trigger != "shipment" {
				t.Errorf("events = %+v, want one shipment-triggered event", f.notifier.events)
			}
		})
	}
}

func TestCreateOverCapacityLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusInitiated)
	f.seedLot(t, "lot-1", "deal-1", 30)

	_, err := f.svc.Create(ctx, "deal-1", "lot-1", models.CreateShipmentRequest{SentBoraCount: 31})
	if !errors.Is(err, errs.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}

	records, _ := f.shipments.ListByLot(ctx, "lot-1")
	if len(records) != 0 {
		t.Errorf("rejected shipment left %d records", len(records))
	}
	lot, _ := f.lotStore.FindByPublicID(ctx, "lot-1")
	if lot.RemainingBoraCount != 30 {
		t.Errorf("remaining = %d, want untouched 30", lot.RemainingBoraCount)
	}
	deal, _ := f.deals.FindByPublicID(ctx, "deal-1")
	if deal.Status != models.DealStatusInitiated {
		t.Errorf("deal status = %s, want unchanged INITIATED", deal.Status)
	}
}

func TestCreateUnknownDeal(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), "deal-missing", "lot-1", models.CreateShipmentRequest{SentBoraCount: 1})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateBatchPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusInitiated)
	f.seedLot(t, "lot-ok", "deal-1", 100)
	f.seedLot(t, "lot-small", "deal-1", 5)

	results, err := f.svc.CreateBatch(ctx, "deal-1", []BatchItem{
		{LotID: "lot-ok", Request: models.CreateShipmentRequest{SentBoraCount: 20}},
		{LotID: "lot-small", Request: models.CreateShipmentRequest{SentBoraCount: 10}},
	})

	var partial *errs.PartialBatchFailure
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialBatchFailure", err)
	}
	if !results[0].OK() || results[0].ID == "lot-ok" {
		t.Errorf("first item = %+v, want success carrying the shipment id", results[0])
	}
	if results[1].OK() || results[1].ID != "lot-small" {
		t.Errorf("second item = %+v, want capacity failure for lot-small", results[1])
	}
	if !errors.Is(results[1].Err, errs.ErrCapacityExceeded) {
		t.Errorf("second item err = %v, want ErrCapacityExceeded", results[1].Err)
	}

	// The succeeding item still pushes the deal forward.
	deal, _ := f.deals.FindByPublicID(ctx, "deal-1")
	if deal.Status != models.DealStatusInTransport {
		t.Errorf("deal status = %s, want IN_TRANSPORT", deal.Status)
	}

	lot, _ := f.lotStore.FindByPublicID(ctx, "lot-small")
	if lot.RemainingBoraCount != 5 {
		t.Errorf("failed lot mutated: remaining = %d", lot.RemainingBoraCount)
	}
}

func TestCreateBatchAllFailedLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusShipped)
	f.seedLot(t, "lot-small", "deal-1", 5)

	results, err := f.svc.CreateBatch(ctx, "deal-1", []BatchItem{
		{LotID: "lot-small", Request: models.CreateShipmentRequest{SentBoraCount: 50}},
	})

	var partial *errs.PartialBatchFailure
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialBatchFailure", err)
	}
	if results[0].OK() {
		t.Fatalf("item = %+v, want capacity failure", results[0])
	}

	// No shipment was created, so the deal must stay where it was.
	deal, _ := f.deals.FindByPublicID(ctx, "deal-1")
	if deal.Status != models.DealStatusShipped {
		t.Errorf("deal status = %s, want unchanged SHIPPED", deal.Status)
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("events = %+v, want none", f.notifier.events)
	}
}

func TestCreateBatchEmptyLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusShipped)

	results, err := f.svc.CreateBatch(ctx, "deal-1", nil)
	if err != nil {
		t.Fatalf("empty batch err = %v, want nil", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}

	deal, _ := f.deals.FindByPublicID(ctx, "deal-1")
	if deal.Status != models.DealStatusShipped {
		t.Errorf("deal status = %s, want unchanged SHIPPED", deal.Status)
	}
}

func TestDeleteRecreditsLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusInitiated)
	f.seedLot(t, "lot-1", "deal-1", 100)

	shipment, err := f.svc.Create(ctx, "deal-1", "lot-1", models.CreateShipmentRequest{SentBoraCount: 35})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(ctx, "deal-1", "lot-1", shipment.PublicID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	lot, _ := f.lotStore.FindByPublicID(ctx, "lot-1")
	if lot.RemainingBoraCount != 100 || lot.ShippedBoraCount != 0 {
		t.Errorf("lot counters = %d/%d after delete, want full re-credit",
			lot.RemainingBoraCount, lot.ShippedBoraCount)
	}
	if len(lot.ShipmentIDs) != 0 {
		t.Errorf("shipment id still active: %v", lot.ShipmentIDs)
	}
}

func TestDeleteCreditsOwningLotDespiteStalePath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusInitiated)
	f.seedLot(t, "lot-1", "deal-1", 100)
	f.seedLot(t, "lot-2", "deal-1", 100)

	shipment, err := f.svc.Create(ctx, "deal-1", "lot-1", models.CreateShipmentRequest{SentBoraCount: 40})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The request path names lot-2; the credit must still go to lot-1.
	if err := f.svc.Delete(ctx, "deal-1", "lot-2", shipment.PublicID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	owner, _ := f.lotStore.FindByPublicID(ctx, "lot-1")
	if owner.RemainingBoraCount != 100 || owner.ShippedBoraCount != 0 {
		t.Errorf("owning lot = %d/%d, want full re-credit",
			owner.RemainingBoraCount, owner.ShippedBoraCount)
	}
	other, _ := f.lotStore.FindByPublicID(ctx, "lot-2")
	if other.RemainingBoraCount != 100 || other.ShippedBoraCount != 0 {
		t.Errorf("unrelated lot mutated: %d/%d", other.RemainingBoraCount, other.ShippedBoraCount)
	}
}

func TestDeleteMissingShipmentIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusInitiated)
	f.seedLot(t, "lot-1", "deal-1", 100)

	if err := f.svc.Delete(ctx, "deal-1", "lot-1", "ship-never-existed"); err != nil {
		t.Fatalf("delete of missing shipment = %v, want nil", err)
	}

	lot, _ := f.lotStore.FindByPublicID(ctx, "lot-1")
	if lot.RemainingBoraCount != 100 {
		t.Errorf("missing-shipment delete credited the lot: remaining = %d", lot.RemainingBoraCount)
	}
}

func TestGetJoinsLotProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDeal(t, "deal-1", models.DealStatusInitiated)
	f.seedLot(t, "lot-1", "deal-1", 100)

	shipment, err := f.svc.Create(ctx, "deal-1", "lot-1", models.CreateShipmentRequest{SentBoraCount: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := f.svc.Get(ctx, shipment.PublicID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if joined.Lot == nil {
		t.Fatal("lot projection missing")
	}
	if joined.Lot.RemainingBoraCount != 90 || joined.Lot.TotalBoraCount != 100 {
		t.Errorf("projection = %+v, want 90 remaining of 100", joined.Lot)
	}
}
