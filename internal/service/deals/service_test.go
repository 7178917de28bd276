package deals

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/memory"
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
	lots      *memory.LotStore
	shipments *memory.ShipmentStore
	brokers   *memory.BrokerStore
	notifier  *captureNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		deals:     memory.NewDealStore(),
		lots:      memory.NewLotStore(),
		shipments: memory.NewShipmentStore(),
		brokers:   memory.NewBrokerStore(),
		notifier:  &captureNotifier{},
	}
	f.svc = NewService(f.deals, f.lots, f.shipments, f.brokers, f.notifier, nil)
	return f
}

func (f *fixture) seedBroker(t *testing.T, brokerID string) {
	t.Helper()
	err := f.brokers.Insert(context.Background(), models.Broker{BrokerID: brokerID, Name: "Broker", DealIDs: []string{}})
	if err != nil {
		t.Fatalf("seeding broker: %v", err)
	}
}

func validRequest(brokerID string, totalLots int) models.CreateDealRequest {
	return models.CreateDealRequest{
		Name:         "Winter Sauda",
		BrokerID:     brokerID,
		PartyName:    "Agarwal Traders",
		PurchaseDate: time.Now().UTC(),
		TotalLots:    totalLots,
		Rate:         2000,
	}
}

func TestCreateSpawnsLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	deal, err := f.svc.Create(ctx, validRequest("b-1", 3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if deal.Status != models.DealStatusInitiated {
		t.Errorf("status = %s, want INITIATED", deal.Status)
	}

	spawned, err := f.lots.ListByDeal(ctx, deal.PublicID)
	if err != nil {
		t.Fatalf("list lots: %v", err)
	}
	if len(spawned) != 3 {
		t.Fatalf("spawned %d lots, want 3", len(spawned))
	}
	for i, lot := range spawned {
		wantLabel := []string{"LOT-1", "LOT-2", "LOT-3"}[i]
		if lot.RiceLotNo == nil || *lot.RiceLotNo != wantLabel {
			t.Errorf("lot %d label = %v, want %s", i, lot.RiceLotNo, wantLabel)
		}
		if lot.Brokerage != defaultBrokerageRate {
			t.Errorf("lot %d brokerage = %v, want default %v", i, lot.Brokerage, defaultBrokerageRate)
		}
	}

	broker, _ := f.brokers.FindByBrokerID(ctx, "b-1")
	if len(broker.DealIDs) != 1 || broker.DealIDs[0] != deal.PublicID {
		t.Errorf("broker deal ids = %v, want [%s]", broker.DealIDs, deal.PublicID)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	badRate := validRequest("b-1", 1)
	badRate.Rate = 0
	if _, err := f.svc.Create(ctx, badRate); !errs.IsValidation(err) {
		t.Errorf("zero rate err = %v, want validation error", err)
	}

	badLots := validRequest("b-1", -1)
	if _, err := f.svc.Create(ctx, badLots); !errs.IsValidation(err) {
		t.Errorf("negative lots err = %v, want validation error", err)
	}

	if _, err := f.svc.Create(ctx, validRequest("b-missing", 1)); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown broker err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusCompletedStampsEndTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	deal, err := f.svc.Create(ctx, validRequest("b-1", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.UpdateStatus(ctx, deal.PublicID, models.DealStatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, _ := f.svc.Get(ctx, deal.PublicID)
	if got.Status != models.DealStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", got.Status)
	}
	if got.EndAt == nil {
		t.Error("completion timestamp missing")
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Trigger != "manual" {
		t.Errorf("events = %+v, want one manual-triggered event", f.notifier.events)
	}
}

func TestUpdateStatusStoresVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	deal, err := f.svc.Create(ctx, validRequest("b-1", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// No transition table: any non-empty string sticks.
	if err := f.svc.UpdateStatus(ctx, deal.PublicID, "ON_HOLD"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ := f.svc.Get(ctx, deal.PublicID)
	if got.Status != "ON_HOLD" {
		t.Errorf("status = %s, want ON_HOLD", got.Status)
	}
	if got.EndAt != nil {
		t.Errorf("non-COMPLETED status stamped end time: %v", got.EndAt)
	}
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	deal, err := f.svc.Create(ctx, validRequest("b-1", 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	spawned, _ := f.lots.ListByDeal(ctx, deal.PublicID)
	err = f.shipments.Insert(ctx, models.Shipment{
		PublicID: "ship-1", LotID: spawned[0].PublicID, DealID: deal.PublicID, SentBoraCount: 5,
	})
	if err != nil {
		t.Fatalf("seeding shipment: %v", err)
	}

	if err := f.svc.Delete(ctx, deal.PublicID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.svc.Get(ctx, deal.PublicID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("deal still readable: err = %v", err)
	}
	remainingLots, _ := f.lots.ListByDeal(ctx, deal.PublicID)
	if len(remainingLots) != 0 {
		t.Errorf("%d lots survived the cascade", len(remainingLots))
	}
	remainingShipments, _ := f.shipments.ListByDeal(ctx, deal.PublicID)
	if len(remainingShipments) != 0 {
		t.Errorf("%d shipments survived the cascade", len(remainingShipments))
	}
	broker, _ := f.brokers.FindByBrokerID(ctx, "b-1")
	if len(broker.DealIDs) != 0 {
		t.Errorf("broker still linked: %v", broker.DealIDs)
	}
}

func TestDeleteUnknownDeal(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Delete(context.Background(), "deal-missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
