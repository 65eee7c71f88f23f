package router

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"balloon-stock-api/internal/handler"
	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/repository"
	"balloon-stock-api/internal/service"
	"balloon-stock-api/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	repo, err := repository.NewSQLiteStoreRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	st := store.New(repo)
	t.Cleanup(func() { st.Close() })

	inventoryService := service.NewInventoryService(st, nil, 0)
	balloonService := service.NewBalloonService(st)
	eventService := service.NewEventService(st)
	historyService := service.NewHistoryService(st)

	srv := httptest.NewServer(New(Config{
		Handler:          handler.New("test"),
		BalloonHandler:   handler.NewBalloonHandler(balloonService, inventoryService),
		EventHandler:     handler.NewEventHandler(eventService, historyService),
		InventoryHandler: handler.NewInventoryHandler(inventoryService),
	}))
	t.Cleanup(srv.Close)
	return srv, st
}

func TestInventoryStream_DeliversSnapshotsThroughMiddleware(t *testing.T) {
	srv, st := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := st.InsertBalloon(ctx, model.Balloon{Code: "B1", Size: `10"`, Color: "Red", Manufacturer: "Acme"})
	if err != nil {
		t.Fatalf("insert balloon failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/inventory/stream", nil)
	if err != nil {
		t.Fatalf("building request failed: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q, want text/event-stream", ct)
	}

	reader := bufio.NewReader(resp.Body)

	rows := readInventoryEvent(t, reader)
	if len(rows) != 1 || rows[0].Code != "B1" || rows[0].QtyIn != 0 {
		t.Fatalf("first event = %+v, want the seeded balloon with zero stock", rows)
	}

	// a mutation pushes a fresh snapshot down the open stream
	if _, err := st.InsertStockIn(ctx, model.StockIn{BalloonID: id, Qty: 10, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("insert stock-in failed: %v", err)
	}
	rows = readInventoryEvent(t, reader)
	if len(rows) != 1 || rows[0].QtyIn != 10 || rows[0].Stock != 10 {
		t.Fatalf("second event = %+v, want stock 10", rows)
	}
}

func readInventoryEvent(t *testing.T, r *bufio.Reader) []model.InventoryRow {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var rows []model.InventoryRow
		if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &rows); err != nil {
			t.Fatalf("bad event payload %q: %v", line, err)
		}
		return rows
	}
}
