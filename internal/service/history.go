package service

import (
	"context"
	"sort"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/store"
)

// HistoryService projects stock-in and sale events into history items joined
// with their balloon's descriptive fields and applies an OperationFilter.
// Results recompute on any change to the relevant event collection, the
// balloon collection, or the filter value.
type HistoryService struct {
	store *store.Store
}

// NewHistoryService creates a history service.
func NewHistoryService(st *store.Store) *HistoryService {
	return &HistoryService{store: st}
}

// StockInObservation is a live, refilterable stock-in history subscription.
type StockInObservation struct {
	out      chan []model.StockInItem
	filterCh chan model.OperationFilter
	done     chan struct{}
}

// C returns the result channel. Delivery is latest-wins: the channel always
// holds the newest result for the newest filter.
func (o *StockInObservation) C() <-chan []model.StockInItem { return o.out }

// SetFilter switches the observation to a new filter. The next delivered
// result is computed under it; results pending under the old filter are
// discarded, so a stale result never follows a fresh one. After the
// observation ends, SetFilter returns without effect.
func (o *StockInObservation) SetFilter(f model.OperationFilter) {
	select {
	case <-o.filterCh:
	default:
	}
	select {
	case o.filterCh <- f:
	case <-o.done:
	}
}

// SaleObservation is a live, refilterable sale history subscription.
type SaleObservation struct {
	out      chan []model.SaleItem
	filterCh chan model.OperationFilter
	done     chan struct{}
}

// C returns the result channel.
func (o *SaleObservation) C() <-chan []model.SaleItem { return o.out }

// SetFilter switches the observation to a new filter. After the observation
// ends, SetFilter returns without effect.
func (o *SaleObservation) SetFilter(f model.OperationFilter) {
	select {
	case <-o.filterCh:
	default:
	}
	select {
	case o.filterCh <- f:
	case <-o.done:
	}
}

// ObserveStockInHistory starts a live stock-in history observation under the
// given initial filter. Cancelling ctx releases all subscriptions.
func (s *HistoryService) ObserveStockInHistory(ctx context.Context, filter model.OperationFilter) (*StockInObservation, error) {
	balloonsCh, err := s.store.ObserveBalloons(ctx)
	if err != nil {
		return nil, err
	}
	eventsCh, err := s.store.ObserveStockIns(ctx)
	if err != nil {
		return nil, err
	}

	obs := &StockInObservation{
		out:      make(chan []model.StockInItem, 1),
		filterCh: make(chan model.OperationFilter, 1),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(obs.out)
		defer close(obs.done)

		var (
			balloons []model.Balloon
			events   []model.StockIn
			seen     int
		)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-balloonsCh:
				balloons = snap
				if seen < 2 {
					seen++
				}
			case snap := <-eventsCh:
				events = snap
				if seen < 2 {
					seen++
				}
			case f := <-obs.filterCh:
				filter = f
			}
			if seen < 2 {
				continue
			}
			deliverLatest(obs.out, JoinStockIns(balloons, events, filter))
		}
	}()

	return obs, nil
}

// ObserveSaleHistory starts a live sale history observation under the given
// initial filter.
func (s *HistoryService) ObserveSaleHistory(ctx context.Context, filter model.OperationFilter) (*SaleObservation, error) {
	balloonsCh, err := s.store.ObserveBalloons(ctx)
	if err != nil {
		return nil, err
	}
	eventsCh, err := s.store.ObserveSales(ctx)
	if err != nil {
		return nil, err
	}

	obs := &SaleObservation{
		out:      make(chan []model.SaleItem, 1),
		filterCh: make(chan model.OperationFilter, 1),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(obs.out)
		defer close(obs.done)

		var (
			balloons []model.Balloon
			events   []model.Sale
			seen     int
		)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-balloonsCh:
				balloons = snap
				if seen < 2 {
					seen++
				}
			case snap := <-eventsCh:
				events = snap
				if seen < 2 {
					seen++
				}
			case f := <-obs.filterCh:
				filter = f
			}
			if seen < 2 {
				continue
			}
			deliverLatest(obs.out, JoinSales(balloons, events, filter))
		}
	}()

	return obs, nil
}

// QueryStockIns computes a one-shot filtered stock-in history from the
// current snapshots.
func (s *HistoryService) QueryStockIns(ctx context.Context, filter model.OperationFilter) ([]model.StockInItem, error) {
	balloons, err := s.store.ListBalloons(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListStockIns(ctx)
	if err != nil {
		return nil, err
	}
	return JoinStockIns(balloons, events, filter), nil
}

// QuerySales computes a one-shot filtered sale history from the current
// snapshots.
func (s *HistoryService) QuerySales(ctx context.Context, filter model.OperationFilter) ([]model.SaleItem, error) {
	balloons, err := s.store.ListBalloons(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	return JoinSales(balloons, events, filter), nil
}

// JoinStockIns joins stock-in events with their balloons, drops events whose
// balloon is gone, applies the filter, and sorts newest date first with
// stable insertion-order tie-break.
func JoinStockIns(balloons []model.Balloon, events []model.StockIn, filter model.OperationFilter) []model.StockInItem {
	byID := balloonIndex(balloons)
	unfiltered := filter.IsZero()

	items := make([]model.StockInItem, 0, len(events))
	for _, e := range events {
		b, ok := byID[e.BalloonID]
		if !ok {
			continue
		}
		it := model.StockInItem{
			ID:           e.ID,
			BalloonID:    e.BalloonID,
			Date:         e.Date,
			Qty:          e.Qty,
			Code:         b.Code,
			Size:         b.Size,
			Color:        b.Color,
			Price:        b.Price,
			Manufacturer: b.Manufacturer,
		}
		if unfiltered || filter.MatchesStockIn(it) {
			items = append(items, it)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}

// JoinSales joins sale events with their balloons, drops orphans, applies the
// filter, and sorts newest date first.
func JoinSales(balloons []model.Balloon, events []model.Sale, filter model.OperationFilter) []model.SaleItem {
	byID := balloonIndex(balloons)
	unfiltered := filter.IsZero()

	items := make([]model.SaleItem, 0, len(events))
	for _, e := range events {
		b, ok := byID[e.BalloonID]
		if !ok {
			continue
		}
		it := model.SaleItem{
			ID:           e.ID,
			BalloonID:    e.BalloonID,
			Date:         e.Date,
			Qty:          e.Qty,
			Customer:     e.CustomerName,
			Code:         b.Code,
			Size:         b.Size,
			Color:        b.Color,
			Price:        b.Price,
			Manufacturer: b.Manufacturer,
		}
		if unfiltered || filter.MatchesSale(it) {
			items = append(items, it)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}

func balloonIndex(balloons []model.Balloon) map[int64]model.Balloon {
	byID := make(map[int64]model.Balloon, len(balloons))
	for _, b := range balloons {
		byID[b.ID] = b
	}
	return byID
}
