package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"balloon-stock-api/internal/cache"
	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/sortkey"
	"balloon-stock-api/internal/store"
)

// InventoryService derives live stock levels from the three collections.
// Any change to balloons, stock-in events, or sales triggers a full
// recomputation, so an emitted snapshot is always consistent with the latest
// state of all three inputs.
type InventoryService struct {
	store    *store.Store
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewInventoryService creates an inventory service. cache may be nil, in
// which case GetInventory always recomputes.
func NewInventoryService(st *store.Store, c cache.Cache, cacheTTL time.Duration) *InventoryService {
	return &InventoryService{
		store:    st,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// ObserveInventory returns a live sequence of inventory snapshots, optionally
// restricted to one manufacturer (trimmed, case-insensitive). The current
// snapshot arrives first; a fresh one follows every store change. Cancelling
// ctx stops the recomputation goroutine and releases all subscriptions.
func (s *InventoryService) ObserveInventory(ctx context.Context, manufacturer string) (<-chan []model.InventoryRow, error) {
	balloonsCh, err := s.store.ObserveBalloons(ctx)
	if err != nil {
		return nil, err
	}
	stockInCh, err := s.store.ObserveStockIns(ctx)
	if err != nil {
		return nil, err
	}
	salesCh, err := s.store.ObserveSales(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan []model.InventoryRow, 1)
	go func() {
		defer close(out)

		var (
			balloons []model.Balloon
			stockIns []model.StockIn
			sales    []model.Sale
			seen     int // initial snapshots received, one per collection
		)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-balloonsCh:
				balloons = snap
				if seen < 3 {
					seen++
				}
			case snap := <-stockInCh:
				stockIns = snap
				if seen < 3 {
					seen++
				}
			case snap := <-salesCh:
				sales = snap
				if seen < 3 {
					seen++
				}
			}
			if seen < 3 {
				continue
			}
			deliverLatest(out, ComputeInventory(balloons, stockIns, sales, manufacturer))
		}
	}()

	return out, nil
}

// GetInventory returns the current inventory snapshot, served through the
// snapshot cache when one is configured. Keys carry the store revision, so a
// read that races a write can at worst store fresh data under a retired key;
// it can never serve a pre-write snapshot after the write.
func (s *InventoryService) GetInventory(ctx context.Context, manufacturer string) ([]model.InventoryRow, error) {
	if s.cache == nil {
		return s.computeCurrent(ctx, manufacturer)
	}

	key := fmt.Sprintf("inventory:%d:%s", s.store.Revision(), strings.ToLower(strings.TrimSpace(manufacturer)))
	data, err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() ([]byte, error) {
		rows, err := s.computeCurrent(ctx, manufacturer)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rows)
	})
	if err != nil {
		return nil, err
	}

	var rows []model.InventoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// StartCacheInvalidation clears the snapshot cache whenever any collection
// changes. Correctness comes from the revision-stamped keys; the watcher only
// prunes entries under retired revisions before their TTL runs out.
// Returns immediately; the watcher stops when ctx is cancelled.
func (s *InventoryService) StartCacheInvalidation(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	balloonsCh, err := s.store.ObserveBalloons(ctx)
	if err != nil {
		return err
	}
	stockInCh, err := s.store.ObserveStockIns(ctx)
	if err != nil {
		return err
	}
	salesCh, err := s.store.ObserveSales(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-balloonsCh:
			case <-stockInCh:
			case <-salesCh:
			}
			if err := s.cache.Clear(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[InventoryService] cache clear failed: %v", err)
			}
		}
	}()
	return nil
}

// CanSell reports whether the requested quantity is covered by the currently
// known stock. Advisory only: the caller's subsequent insert is not guarded,
// so a concurrent sale can invalidate the answer.
func (s *InventoryService) CanSell(ctx context.Context, balloonID int64, qty int) (bool, int, error) {
	totalIn, err := s.store.TotalIn(ctx, balloonID)
	if err != nil {
		return false, 0, err
	}
	totalOut, err := s.store.TotalOut(ctx, balloonID)
	if err != nil {
		return false, 0, err
	}
	stock := totalIn - totalOut
	return qty <= stock, stock, nil
}

func (s *InventoryService) computeCurrent(ctx context.Context, manufacturer string) ([]model.InventoryRow, error) {
	balloons, err := s.store.ListBalloons(ctx)
	if err != nil {
		return nil, err
	}
	stockIns, err := s.store.ListStockIns(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeInventory(balloons, stockIns, sales, manufacturer), nil
}

// ComputeInventory builds one InventoryRow per balloon from full snapshots of
// the three collections, filtered by manufacturer when the filter is
// non-blank, sorted in the natural inventory order.
func ComputeInventory(balloons []model.Balloon, stockIns []model.StockIn, sales []model.Sale, manufacturer string) []model.InventoryRow {
	inSums := make(map[int64]int, len(balloons))
	for _, e := range stockIns {
		inSums[e.BalloonID] += e.Qty
	}
	outSums := make(map[int64]int, len(balloons))
	for _, e := range sales {
		outSums[e.BalloonID] += e.Qty
	}

	filter := strings.TrimSpace(manufacturer)
	rows := make([]model.InventoryRow, 0, len(balloons))
	for _, b := range balloons {
		if filter != "" && !strings.EqualFold(strings.TrimSpace(b.Manufacturer), filter) {
			continue
		}
		qtyIn := inSums[b.ID]
		qtyOut := outSums[b.ID]
		rows = append(rows, model.InventoryRow{
			BalloonID:    b.ID,
			Code:         b.Code,
			Size:         b.Size,
			Color:        b.Color,
			Price:        b.Price,
			Manufacturer: b.Manufacturer,
			QtyIn:        qtyIn,
			QtyOut:       qtyOut,
			Stock:        qtyIn - qtyOut,
		})
	}

	sortkey.SortRows(rows)
	return rows
}

// deliverLatest replaces the pending value on a capacity-1 channel so slow
// consumers always see the newest snapshot.
func deliverLatest[T any](ch chan []T, value []T) {
	select {
	case <-ch:
	default:
	}
	ch <- value
}
