package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkhandelwal3/sauda-backend/internal/domain/errs"
	"github.com/nkhandelwal3/sauda-backend/internal/domain/models"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/memory"
	"github.com/nkhandelwal3/sauda-backend/internal/service/lots"
)

type fixture struct {
	svc       *Service
	brokers   *memory.BrokerStore
	entries   *memory.LedgerStore
	deals     *memory.DealStore
	lotStore  *memory.LotStore
	shipments *memory.ShipmentStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		brokers:   memory.NewBrokerStore(),
		entries:   memory.NewLedgerStore(),
		deals:     memory.NewDealStore(),
		lotStore:  memory.NewLotStore(),
		shipments: memory.NewShipmentStore(),
	}
	lotLedger := lots.NewService(f.lotStore, f.shipments, nil)
	f.svc = NewService(f.brokers, f.entries, f.deals, f.shipments, lotLedger, nil)
	return f
}

func (f *fixture) seedBroker(t *testing.T, brokerID string) {
	t.Helper()
	if _, err := f.svc.CreateBroker(context.Background(), models.CreateBrokerRequest{BrokerID: brokerID, Name: "Broker " + brokerID}); err != nil {
		t.Fatalf("seeding broker: %v", err)
	}
}

func TestCreateBrokerRejectsDuplicateID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateBroker(ctx, models.CreateBrokerRequest{BrokerID: "b-1", Name: "First"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.svc.CreateBroker(ctx, models.CreateBrokerRequest{BrokerID: "b-1", Name: "Second"})
	if !errors.Is(err, errs.ErrDuplicateKey) {
		t.Fatalf("err = %v, want ErrDuplicateKey", err)
	}

	broker, err := f.svc.GetBroker(ctx, "b-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if broker.Name != "First" {
		t.Errorf("existing broker was altered: name = %s", broker.Name)
	}
}

func TestPostEntryRunningTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	post := func(entryType string, amount float64) {
		t.Helper()
		if _, err := f.svc.PostEntry(ctx, "b-1", models.LedgerEntryRequest{EntryType: entryType, Amount: amount}); err != nil {
			t.Fatalf("post %s %v: %v", entryType, amount, err)
		}
	}

	post(models.EntryTypeCredit, 500)
	post(models.EntryTypeDebit, 200)

	broker, _ := f.svc.GetBroker(ctx, "b-1")
	if broker.TotalCredits != 500 || broker.TotalDebits != 200 {
		t.Errorf("totals = %v/%v, want 500/200", broker.TotalCredits, broker.TotalDebits)
	}

	post(models.EntryTypeAdjustment, 100)

	broker, _ = f.svc.GetBroker(ctx, "b-1")
	if broker.TotalCredits != 600 || broker.TotalDebits != 300 {
		t.Errorf("totals after adjustment = %v/%v, want 600/300", broker.TotalCredits, broker.TotalDebits)
	}

	entries, err := f.svc.ListEntries(ctx, "b-1")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}

func TestPostEntryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	cases := []struct {
		name string
		req  models.LedgerEntryRequest
	}{
		{"zero amount", models.LedgerEntryRequest{EntryType: models.EntryTypeCredit, Amount: 0}},
		{"negative amount", models.LedgerEntryRequest{EntryType: models.EntryTypeDebit, Amount: -50}},
		{"bad entry type", models.LedgerEntryRequest{EntryType: "TRANSFER", Amount: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.PostEntry(ctx, "b-1", tc.req); !errs.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}

	if _, err := f.svc.PostEntry(ctx, "b-missing", models.LedgerEntryRequest{EntryType: models.EntryTypeCredit, Amount: 10}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown broker err = %v, want ErrNotFound", err)
	}
}

func TestPostCostEstimateAggregateDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	if err := f.deals.Insert(ctx, models.Deal{PublicID: "deal-1", Name: "Winter Sauda", BrokerID: "b-1", Rate: 2000}); err != nil {
		t.Fatalf("seeding deal: %v", err)
	}
	err := f.lotStore.InsertMany(ctx, []models.Lot{
		{PublicID: "lot-plain", DealID: "deal-1", Qtl: 100, ShipmentIDs: []string{}, CreatedAt: time.Now().UTC()},
		{PublicID: "lot-frk", DealID: "deal-1", Qtl: 100, FRK: true, ShipmentIDs: []string{}, CreatedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("seeding lots: %v", err)
	}
	frkQty := 20.0
	err = f.shipments.Insert(ctx, models.Shipment{
		PublicID:    "ship-frk",
		LotID:       "lot-frk",
		DealID:      "deal-1",
		FRK:         true,
		FRKDispatch: &models.FRKDispatch{Qty: &frkQty},
	})
	if err != nil {
		t.Fatalf("seeding shipment: %v", err)
	}

	moisture, qi, dalali, other, brokerage := 10.0, 50.0, 30.0, 20.0, 3.0
	result, results, err := f.svc.PostCostEstimate(ctx, "deal-1", models.CostEstimateRequest{
		LotIDs:   []string{"lot-plain", "lot-frk"},
		BrokerID: "b-1",
		Expenses: models.CostPatch{
			MoistureCut:      &moisture,
			QIExpense:        &qi,
			LotDalaliExpense: &dalali,
			OtherExpenses:    &other,
			Brokerage:        &brokerage,
		},
	})
	if err != nil {
		t.Fatalf("cost estimate: %v", err)
	}
	for _, r := range results {
		if !r.OK() {
			t.Fatalf("item %s failed: %v", r.ID, r.Err)
		}
	}

	if got := result.NettAmounts["lot-plain"]; got != 199590 {
		t.Errorf("plain lot nett = %v, want 199590", got)
	}
	if got := result.NettAmounts["lot-frk"]; got != 199650 {
		t.Errorf("frk lot nett = %v, want 199650", got)
	}
	if result.TotalNettAmount != 399240 {
		t.Errorf("total = %v, want 399240", result.TotalNettAmount)
	}

	// One aggregate DEBIT, not one posting per lot.
	entries, _ := f.svc.ListEntries(ctx, "b-1")
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want exactly 1 aggregate posting", len(entries))
	}
	if entries[0].EntryType != models.EntryTypeDebit || entries[0].Amount != 399240 {
		t.Errorf("posting = %s %v, want DEBIT 399240", entries[0].EntryType, entries[0].Amount)
	}
	if entries[0].PublicID != result.LedgerEntryID {
		t.Errorf("ledger entry id mismatch: %s vs %s", entries[0].PublicID, result.LedgerEntryID)
	}

	broker, _ := f.svc.GetBroker(ctx, "b-1")
	if broker.TotalDebits != 399240 {
		t.Errorf("broker debits = %v, want 399240", broker.TotalDebits)
	}

	// Nett amounts persisted onto the lots.
	lot, _ := f.lotStore.FindByPublicID(ctx, "lot-plain")
	if lot.NettAmount == nil || *lot.NettAmount != 199590 {
		t.Errorf("persisted nett = %v, want 199590", lot.NettAmount)
	}
}

func TestPostCostEstimateNegativeTotalSkipsPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	if err := f.deals.Insert(ctx, models.Deal{PublicID: "deal-1", Name: "Sauda", BrokerID: "b-1", Rate: 10}); err != nil {
		t.Fatalf("seeding deal: %v", err)
	}
	err := f.lotStore.InsertMany(ctx, []models.Lot{
		{PublicID: "lot-1", DealID: "deal-1", Qtl: 1, ShipmentIDs: []string{}, CreatedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("seeding lot: %v", err)
	}

	// Expenses dwarf the gross; the nett amount goes negative.
	qi := 500.0
	result, results, err := f.svc.PostCostEstimate(ctx, "deal-1", models.CostEstimateRequest{
		LotIDs:   []string{"lot-1"},
		BrokerID: "b-1",
		Expenses: models.CostPatch{QIExpense: &qi},
	})
	if err != nil {
		t.Fatalf("cost estimate: %v", err)
	}
	if !results[0].OK() {
		t.Fatalf("item failed: %v", results[0].Err)
	}
	if result.TotalNettAmount != -490 {
		t.Errorf("total = %v, want -490", result.TotalNettAmount)
	}
	if result.LedgerEntryID != "" {
		t.Errorf("ledger entry id = %s, want no posting", result.LedgerEntryID)
	}

	// The negative amount still lands on the lot.
	lot, _ := f.lotStore.FindByPublicID(ctx, "lot-1")
	if lot.NettAmount == nil || *lot.NettAmount != -490 {
		t.Errorf("persisted nett = %v, want -490", lot.NettAmount)
	}

	entries, _ := f.svc.ListEntries(ctx, "b-1")
	if len(entries) != 0 {
		t.Errorf("entries = %d, want none for a non-positive total", len(entries))
	}
	broker, _ := f.svc.GetBroker(ctx, "b-1")
	if broker.TotalDebits != 0 {
		t.Errorf("broker debits = %v, want untouched 0", broker.TotalDebits)
	}
}

func TestPostCostEstimatePartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBroker(t, "b-1")

	if err := f.deals.Insert(ctx, models.Deal{PublicID: "deal-1", Name: "Sauda", BrokerID: "b-1", Rate: 100}); err != nil {
		t.Fatalf("seeding deal: %v", err)
	}
	err := f.lotStore.InsertMany(ctx, []models.Lot{
		{PublicID: "lot-1", DealID: "deal-1", Qtl: 10, ShipmentIDs: []string{}, CreatedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("seeding lot: %v", err)
	}

	result, results, err := f.svc.PostCostEstimate(ctx, "deal-1", models.CostEstimateRequest{
		LotIDs:   []string{"lot-1", "lot-missing"},
		BrokerID: "b-1",
	})

	var partial *errs.PartialBatchFailure
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialBatchFailure", err)
	}
	if !results[0].OK() {
		t.Errorf("lot-1 failed: %v", results[0].Err)
	}
	if results[1].OK() || !errors.Is(results[1].Err, errs.ErrNotFound) {
		t.Errorf("lot-missing = %+v, want ErrNotFound", results[1])
	}

	// The aggregate posting covers the succeeding lots only.
	if result.TotalNettAmount != 1000 {
		t.Errorf("total = %v, want 1000 (10 qtl x 100)", result.TotalNettAmount)
	}
	entries, _ := f.svc.ListEntries(ctx, "b-1")
	if len(entries) != 1 || entries[0].Amount != 1000 {
		t.Errorf("entries = %+v, want one DEBIT of 1000", entries)
	}
}
