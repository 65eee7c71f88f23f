package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/repository"
	"balloon-stock-api/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	repo, err := repository.NewSQLiteStoreRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	s := store.New(repo)
	t.Cleanup(func() { s.Close() })
	return s
}

// waitFor reads snapshots until one satisfies pred or the deadline passes.
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

func mustInsertBalloon(t *testing.T, s *store.Store, b model.Balloon) int64 {
	t.Helper()
	id, err := s.InsertBalloon(context.Background(), b)
	if err != nil {
		t.Fatalf("insert balloon failed: %v", err)
	}
	return id
}

func mustInsertStockIn(t *testing.T, s *store.Store, e model.StockIn) int64 {
	t.Helper()
	id, err := s.InsertStockIn(context.Background(), e)
	if err != nil {
		t.Fatalf("insert stock-in failed: %v", err)
	}
	return id
}

func mustInsertSale(t *testing.T, s *store.Store, e model.Sale) int64 {
	t.Helper()
	id, err := s.InsertSale(context.Background(), e)
	if err != nil {
		t.Fatalf("insert sale failed: %v", err)
	}
	return id
}
