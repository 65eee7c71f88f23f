package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"balloon-stock-api/internal/model"
)

func seedHistory(t *testing.T) (*HistoryService, int64, int64) {
	t.Helper()
	st := newTestStore(t)

	redID := mustInsertBalloon(t, st, model.Balloon{Code: "RED-1", Size: `10"`, Color: "Red", Price: 5, Manufacturer: "Acme"})
	blueID := mustInsertBalloon(t, st, model.Balloon{Code: "BLU-1", Size: `12"`, Color: "Blue", Price: 6, Manufacturer: "Globex"})

	mustInsertStockIn(t, st, model.StockIn{BalloonID: redID, Qty: 50, Date: day(2024, 1, 1)})
	mustInsertStockIn(t, st, model.StockIn{BalloonID: blueID, Qty: 30, Date: day(2024, 2, 1)})
	mustInsertSale(t, st, model.Sale{BalloonID: redID, Qty: 12, CustomerName: "Jane Doe", Date: day(2024, 1, 5)})
	mustInsertSale(t, st, model.Sale{BalloonID: blueID, Qty: 3, CustomerName: "Bob", Date: day(2024, 3, 1)})

	return NewHistoryService(st), redID, blueID
}

func TestQueryStockIns_BlankFilterReturnsAllNewestFirst(t *testing.T) {
	svc, _, _ := seedHistory(t)

	items, err := svc.QueryStockIns(context.Background(), model.OperationFilter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if !items[0].Date.After(items[1].Date) {
		t.Errorf("history not sorted newest first: %v then %v", items[0].Date, items[1].Date)
	}
	// joined descriptive fields present
	if items[1].Code != "RED-1" || items[1].Price != 5 || items[1].Manufacturer != "Acme" {
		t.Errorf("join missing balloon fields: %+v", items[1])
	}
}

func TestQuerySales_FilterClauses(t *testing.T) {
	svc, _, _ := seedHistory(t)
	ctx := context.Background()

	// customer substring, case-insensitive
	items, err := svc.QuerySales(ctx, model.OperationFilter{Customer: "jane"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 1 || items[0].Customer != "Jane Doe" {
		t.Errorf("customer filter returned %+v", items)
	}

	// code prefix
	items, err = svc.QuerySales(ctx, model.OperationFilter{Code: "blu"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 1 || items[0].Code != "BLU-1" {
		t.Errorf("code prefix filter returned %+v", items)
	}

	// date range
	from, to := day(2024, 1, 1), day(2024, 1, 31)
	items, err = svc.QuerySales(ctx, model.OperationFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 1 || !items[0].Date.Equal(day(2024, 1, 5)) {
		t.Errorf("date range filter returned %+v", items)
	}

	// manufacturer exact, case-insensitive
	items, err = svc.QuerySales(ctx, model.OperationFilter{Manufacturer: "globex"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 1 || items[0].Manufacturer != "Globex" {
		t.Errorf("manufacturer filter returned %+v", items)
	}
}

func TestObserveStockInHistory_LiveRefilter(t *testing.T) {
	st := newTestStore(t)
	svc := NewHistoryService(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redID := mustInsertBalloon(t, st, model.Balloon{Code: "RED-1", Size: `10"`, Color: "Red"})
	bluID := mustInsertBalloon(t, st, model.Balloon{Code: "BLU-1", Size: `12"`, Color: "Blue"})
	mustInsertStockIn(t, st, model.StockIn{BalloonID: redID, Qty: 5, Date: day(2024, 1, 1)})
	mustInsertStockIn(t, st, model.StockIn{BalloonID: bluID, Qty: 6, Date: day(2024, 1, 2)})

	obs, err := svc.ObserveStockInHistory(ctx, model.OperationFilter{})
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	waitFor(t, obs.C(), func(items []model.StockInItem) bool { return len(items) == 2 })

	// narrow the filter on the same observation
	obs.SetFilter(model.OperationFilter{Code: "RE"})
	items := waitFor(t, obs.C(), func(items []model.StockInItem) bool { return len(items) == 1 })
	if items[0].Code != "RED-1" {
		t.Errorf("narrowed result = %+v, want RED-1 entry", items[0])
	}

	// widen back to blank: the full set returns without a new observation
	obs.SetFilter(model.OperationFilter{})
	waitFor(t, obs.C(), func(items []model.StockInItem) bool { return len(items) == 2 })

	// data changes under the active filter keep flowing
	mustInsertStockIn(t, st, model.StockIn{BalloonID: redID, Qty: 9, Date: day(2024, 1, 3)})
	waitFor(t, obs.C(), func(items []model.StockInItem) bool { return len(items) == 3 })
}

func TestObserveStockInHistory_SetFilterAfterEnd(t *testing.T) {
	st := newTestStore(t)
	svc := NewHistoryService(st)
	ctx, cancel := context.WithCancel(context.Background())

	obs, err := svc.ObserveStockInHistory(ctx, model.OperationFilter{})
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	select {
	case <-obs.C():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the initial result")
	}

	cancel()
	for {
		if _, open := <-obs.C(); !open {
			break
		}
	}

	// concurrent SetFilter calls on an ended observation must all return
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				obs.SetFilter(model.OperationFilter{Code: "RE"})
			}
		}()
	}
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("SetFilter blocked after the observation ended")
	}
}

func TestObserveSaleHistory_ReactsToBalloonChanges(t *testing.T) {
	st := newTestStore(t)
	svc := NewHistoryService(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id := mustInsertBalloon(t, st, model.Balloon{Code: "B1", Size: "s", Color: "c", Price: 5})
	mustInsertSale(t, st, model.Sale{BalloonID: id, Qty: 1, CustomerName: "Jane", Date: day(2024, 1, 1)})

	obs, err := svc.ObserveSaleHistory(ctx, model.OperationFilter{})
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	waitFor(t, obs.C(), func(items []model.SaleItem) bool {
		return len(items) == 1 && items[0].Price == 5
	})

	// price edit on the balloon is reflected in joined history
	if err := st.UpdateBalloon(ctx, model.Balloon{ID: id, Code: "B1", Size: "s", Color: "c", Price: 7}); err != nil {
		t.Fatalf("update balloon failed: %v", err)
	}
	waitFor(t, obs.C(), func(items []model.SaleItem) bool {
		return len(items) == 1 && items[0].Price == 7
	})
}

func TestJoinSales_DropsOrphanedEvents(t *testing.T) {
	balloons := []model.Balloon{{ID: 1, Code: "B1", Size: "s", Color: "c"}}
	sales := []model.Sale{
		{ID: 1, BalloonID: 1, Qty: 2, CustomerName: "Jane", Date: day(2024, 1, 1)},
		{ID: 2, BalloonID: 99, Qty: 3, CustomerName: "Ghost", Date: day(2024, 1, 2)},
	}

	items := JoinSales(balloons, sales, model.OperationFilter{})
	if len(items) != 1 || items[0].Customer != "Jane" {
		t.Errorf("orphaned event should be excluded, got %+v", items)
	}
}

func TestJoinStockIns_StableSameDateOrder(t *testing.T) {
	balloons := []model.Balloon{{ID: 1, Code: "B1", Size: "s", Color: "c"}}
	events := []model.StockIn{
		{ID: 3, BalloonID: 1, Qty: 1, Date: day(2024, 1, 1)},
		{ID: 2, BalloonID: 1, Qty: 2, Date: day(2024, 1, 1)},
		{ID: 1, BalloonID: 1, Qty: 3, Date: day(2024, 1, 1)},
	}

	items := JoinStockIns(balloons, events, model.OperationFilter{})
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	// same-date events keep their input order
	for i, wantID := range []int64{3, 2, 1} {
		if items[i].ID != wantID {
			t.Fatalf("tie-break order changed: got %d at %d, want %d", items[i].ID, i, wantID)
		}
	}
}
