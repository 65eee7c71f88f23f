package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	repo, err := repository.NewSQLiteStoreRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	s := New(repo)
	t.Cleanup(func() { s.Close() })
	return s
}

// waitFor reads snapshots until one satisfies pred or the deadline passes.
// Delivery is latest-wins, so intermediate snapshots may be skipped.
func waitFor[T any](t *testing.T, ch <-chan []T, pred func([]T) bool) []T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if pred(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for expected snapshot")
		}
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestObserveBalloons_InitialSnapshotThenUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := s.InsertBalloon(ctx, model.Balloon{Code: "1", Size: `10"`, Color: "Red", Price: 5}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	ch, err := s.ObserveBalloons(ctx)
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}

	initial := waitFor(t, ch, func(b []model.Balloon) bool { return len(b) == 1 })
	if initial[0].Code != "1" {
		t.Errorf("initial snapshot code = %q, want %q", initial[0].Code, "1")
	}

	if _, err := s.InsertBalloon(ctx, model.Balloon{Code: "2", Size: `12"`, Color: "Blue", Price: 6}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	waitFor(t, ch, func(b []model.Balloon) bool { return len(b) == 2 })
}

func TestObserve_LatestWinsCoalescing(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.ObserveBalloons(ctx)
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}

	// Several writes without the observer consuming: the pending snapshot is
	// replaced each time, so the next read sees the newest state.
	for i := 0; i < 5; i++ {
		if _, err := s.InsertBalloon(ctx, model.Balloon{Code: "1", Size: `10"`, Color: "Red"}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	waitFor(t, ch, func(b []model.Balloon) bool { return len(b) == 5 })
}

func TestObserve_CancelReleasesSubscription(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := s.ObserveBalloons(ctx)
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	waitFor(t, ch, func(b []model.Balloon) bool { return len(b) == 0 })
	cancel()

	// Give the unsubscribe goroutine a moment, then verify writes no longer
	// reach the cancelled channel.
	time.Sleep(50 * time.Millisecond)
	if _, err := s.InsertBalloon(context.Background(), model.Balloon{Code: "1", Size: "s", Color: "c"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	select {
	case snap := <-ch:
		if len(snap) != 0 {
			t.Errorf("cancelled observer received post-cancel snapshot of %d balloons", len(snap))
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdateBalloon_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpdateBalloon(ctx, model.Balloon{ID: 42, Code: "1", Size: "s", Color: "c"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("update of missing id = %v, want ErrNotFound", err)
	}
	if err := s.DeleteStockIn(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete of missing stock-in = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSale(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete of missing sale = %v, want ErrNotFound", err)
	}
	if err := s.DeleteBalloon(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("cascade delete of missing balloon = %v, want ErrNotFound", err)
	}
}

func TestFailedMutationEmitsNothing(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.ObserveBalloons(ctx)
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	waitFor(t, ch, func(b []model.Balloon) bool { return len(b) == 0 })

	if err := s.UpdateBalloon(ctx, model.Balloon{ID: 99, Code: "x", Size: "s", Color: "c"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	select {
	case <-ch:
		t.Error("failed mutation must not emit a snapshot")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventDateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	balloonID, err := s.InsertBalloon(ctx, model.Balloon{Code: "1", Size: `10"`, Color: "Red"})
	if err != nil {
		t.Fatalf("insert balloon failed: %v", err)
	}

	id, err := s.InsertStockIn(ctx, model.StockIn{BalloonID: balloonID, Qty: 3, Date: time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("insert stock-in failed: %v", err)
	}

	got, err := s.GetStockIn(ctx, id)
	if err != nil {
		t.Fatalf("get stock-in failed: %v", err)
	}
	if !got.Date.Equal(day(2024, 1, 1)) {
		t.Errorf("date round-trip = %v, want 2024-01-01 midnight UTC", got.Date)
	}
}

func TestDeleteBalloon_CascadeRemovesEvents(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	balloonID, err := s.InsertBalloon(ctx, model.Balloon{Code: "B1", Size: `10"`, Color: "Red", Price: 5})
	if err != nil {
		t.Fatalf("insert balloon failed: %v", err)
	}
	keepID, err := s.InsertBalloon(ctx, model.Balloon{Code: "B2", Size: `12"`, Color: "Blue", Price: 6})
	if err != nil {
		t.Fatalf("insert balloon failed: %v", err)
	}

	if _, err := s.InsertStockIn(ctx, model.StockIn{BalloonID: balloonID, Qty: 50, Date: day(2024, 1, 1)}); err != nil {
		t.Fatalf("insert stock-in failed: %v", err)
	}
	if _, err := s.InsertStockIn(ctx, model.StockIn{BalloonID: keepID, Qty: 7, Date: day(2024, 1, 2)}); err != nil {
		t.Fatalf("insert stock-in failed: %v", err)
	}
	if _, err := s.InsertSale(ctx, model.Sale{BalloonID: balloonID, Qty: 12, CustomerName: "Jane", Date: day(2024, 1, 5)}); err != nil {
		t.Fatalf("insert sale failed: %v", err)
	}

	stockCh, err := s.ObserveStockIns(ctx)
	if err != nil {
		t.Fatalf("observe stock-in failed: %v", err)
	}
	salesCh, err := s.ObserveSales(ctx)
	if err != nil {
		t.Fatalf("observe sales failed: %v", err)
	}

	if err := s.DeleteBalloon(ctx, balloonID); err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}

	balloons, err := s.ListBalloons(ctx)
	if err != nil {
		t.Fatalf("list balloons failed: %v", err)
	}
	if len(balloons) != 1 || balloons[0].ID != keepID {
		t.Errorf("expected only the unrelated balloon to survive, got %v", balloons)
	}

	stockIns := waitFor(t, stockCh, func(e []model.StockIn) bool { return len(e) == 1 })
	if stockIns[0].BalloonID != keepID {
		t.Errorf("surviving stock-in belongs to %d, want %d", stockIns[0].BalloonID, keepID)
	}
	waitFor(t, salesCh, func(e []model.Sale) bool { return len(e) == 0 })
}

func TestFindBalloonByAttrs_ExactTuple(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.InsertBalloon(ctx, model.Balloon{Code: "B1", Size: `10"`, Color: "Red", Price: 5, Manufacturer: "Acme"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	found, err := s.FindBalloonByAttrs(ctx, "B1", `10"`, "Red", "Acme")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.ID != id {
		t.Errorf("found id %d, want %d", found.ID, id)
	}

	// manufacturer is part of the identity tuple
	if _, err := s.FindBalloonByAttrs(ctx, "B1", `10"`, "Red", "Other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("different manufacturer should not match, got %v", err)
	}
	// code matching is case-sensitive
	if _, err := s.FindBalloonByAttrs(ctx, "b1", `10"`, "Red", "Acme"); !errors.Is(err, ErrNotFound) {
		t.Errorf("case-different code should not match, got %v", err)
	}
}

func TestListManufacturers_DistinctSortedNonEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []model.Balloon{
		{Code: "1", Size: "s", Color: "c", Manufacturer: "Zeta"},
		{Code: "2", Size: "s", Color: "c", Manufacturer: "Acme"},
		{Code: "3", Size: "s", Color: "c", Manufacturer: "Acme"},
		{Code: "4", Size: "s", Color: "c", Manufacturer: ""},
	} {
		if _, err := s.InsertBalloon(ctx, b); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got, err := s.ListManufacturers(ctx)
	if err != nil {
		t.Fatalf("list manufacturers failed: %v", err)
	}
	want := []string{"Acme", "Zeta"}
	if len(got) != len(want) {
		t.Fatalf("manufacturers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("manufacturers = %v, want %v", got, want)
		}
	}
}

func TestTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	balloonID, err := s.InsertBalloon(ctx, model.Balloon{Code: "1", Size: "s", Color: "c"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	for _, qty := range []int{10, 20, 5} {
		if _, err := s.InsertStockIn(ctx, model.StockIn{BalloonID: balloonID, Qty: qty, Date: day(2024, 1, 1)}); err != nil {
			t.Fatalf("insert stock-in failed: %v", err)
		}
	}
	if _, err := s.InsertSale(ctx, model.Sale{BalloonID: balloonID, Qty: 8, CustomerName: "Jane", Date: day(2024, 1, 2)}); err != nil {
		t.Fatalf("insert sale failed: %v", err)
	}

	in, err := s.TotalIn(ctx, balloonID)
	if err != nil {
		t.Fatalf("total in failed: %v", err)
	}
	if in != 35 {
		t.Errorf("TotalIn = %d, want 35", in)
	}
	out, err := s.TotalOut(ctx, balloonID)
	if err != nil {
		t.Fatalf("total out failed: %v", err)
	}
	if out != 8 {
		t.Errorf("TotalOut = %d, want 8", out)
	}
}
