// Package store holds the three entity collections and exposes each one as a
// push-based sequence of full snapshots. Every successful mutation emits a
// fresh snapshot of the affected collection to all current observers; failed
// mutations emit nothing, so observers only ever see consistent states.
package store

import (
	"context"
	"sync"
	"sync/atomic"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/repository"
)

// ErrNotFound is returned when a mutation or lookup references a missing id.
var ErrNotFound = repository.ErrNotFound

// Store is the observable entity store. Writes to a collection are serialized
// by a per-collection mutex so snapshot emissions happen in write order and
// never expose a partially applied mutation.
type Store struct {
	repo repository.StoreRepository

	revision atomic.Int64

	balloonsMu sync.Mutex
	stockInMu  sync.Mutex
	salesMu    sync.Mutex

	balloons *broadcaster[model.Balloon]
	stockIn  *broadcaster[model.StockIn]
	sales    *broadcaster[model.Sale]
}

// New creates a store on top of a repository.
func New(repo repository.StoreRepository) *Store {
	return &Store{
		repo:     repo,
		balloons: newBroadcaster[model.Balloon](),
		stockIn:  newBroadcaster[model.StockIn](),
		sales:    newBroadcaster[model.Sale](),
	}
}

// Close closes the underlying repository.
func (s *Store) Close() error {
	return s.repo.Close()
}

// Revision returns a counter bumped on every committed mutation. Derived
// caches keyed by the revision can never alias an entry computed before a
// later write.
func (s *Store) Revision() int64 {
	return s.revision.Load()
}

// ObserveBalloons returns a live sequence of balloon snapshots. The current
// snapshot is delivered immediately, then a new one after every mutation.
// Cancelling ctx releases the subscription.
func (s *Store) ObserveBalloons(ctx context.Context) (<-chan []model.Balloon, error) {
	s.balloonsMu.Lock()
	defer s.balloonsMu.Unlock()

	snapshot, err := s.repo.ListBalloons(ctx)
	if err != nil {
		return nil, err
	}
	ch := s.balloons.subscribe(ctx)
	s.balloons.deliver(ch, snapshot)
	return ch, nil
}

// ObserveStockIns returns a live sequence of stock-in snapshots.
func (s *Store) ObserveStockIns(ctx context.Context) (<-chan []model.StockIn, error) {
	s.stockInMu.Lock()
	defer s.stockInMu.Unlock()

	snapshot, err := s.repo.ListStockIns(ctx)
	if err != nil {
		return nil, err
	}
	ch := s.stockIn.subscribe(ctx)
	s.stockIn.deliver(ch, snapshot)
	return ch, nil
}

// ObserveSales returns a live sequence of sale snapshots.
func (s *Store) ObserveSales(ctx context.Context) (<-chan []model.Sale, error) {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	snapshot, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	ch := s.sales.subscribe(ctx)
	s.sales.deliver(ch, snapshot)
	return ch, nil
}

// InsertBalloon inserts a balloon and emits a new balloons snapshot.
func (s *Store) InsertBalloon(ctx context.Context, b model.Balloon) (int64, error) {
	s.balloonsMu.Lock()
	defer s.balloonsMu.Unlock()

	id, err := s.repo.InsertBalloon(ctx, b)
	if err != nil {
		return 0, err
	}
	s.publishBalloons(ctx)
	return id, nil
}

// UpdateBalloon updates a balloon's descriptive fields and emits a snapshot.
// Returns ErrNotFound if the id does not exist.
func (s *Store) UpdateBalloon(ctx context.Context, b model.Balloon) error {
	s.balloonsMu.Lock()
	defer s.balloonsMu.Unlock()

	if err := s.repo.UpdateBalloon(ctx, b); err != nil {
		return err
	}
	s.publishBalloons(ctx)
	return nil
}

// DeleteBalloon removes a balloon and all of its stock-in and sale events
// atomically, then emits fresh snapshots for all three collections.
func (s *Store) DeleteBalloon(ctx context.Context, id int64) error {
	// Lock order: balloons, stock-in, sales. Matches every other multi-lock
	// path in this package.
	s.balloonsMu.Lock()
	defer s.balloonsMu.Unlock()
	s.stockInMu.Lock()
	defer s.stockInMu.Unlock()
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	if err := s.repo.DeleteBalloonCascade(ctx, id); err != nil {
		return err
	}
	s.publishBalloons(ctx)
	s.publishStockIns(ctx)
	s.publishSales(ctx)
	return nil
}

// GetBalloon fetches a balloon by id.
func (s *Store) GetBalloon(ctx context.Context, id int64) (*model.Balloon, error) {
	return s.repo.GetBalloon(ctx, id)
}

// ListBalloons returns the current balloons snapshot.
func (s *Store) ListBalloons(ctx context.Context) ([]model.Balloon, error) {
	return s.repo.ListBalloons(ctx)
}

// FindBalloonByAttrs matches on the exact (code, size, color, manufacturer)
// tuple. Returns ErrNotFound when nothing matches.
func (s *Store) FindBalloonByAttrs(ctx context.Context, code, size, color, manufacturer string) (*model.Balloon, error) {
	return s.repo.FindBalloonByAttrs(ctx, code, size, color, manufacturer)
}

// ListManufacturers returns distinct non-empty manufacturers, sorted.
func (s *Store) ListManufacturers(ctx context.Context) ([]string, error) {
	return s.repo.ListManufacturers(ctx)
}

// InsertStockIn inserts a stock-in event and emits a snapshot.
func (s *Store) InsertStockIn(ctx context.Context, e model.StockIn) (int64, error) {
	s.stockInMu.Lock()
	defer s.stockInMu.Unlock()

	e.Date = model.Day(e.Date)
	id, err := s.repo.InsertStockIn(ctx, e)
	if err != nil {
		return 0, err
	}
	s.publishStockIns(ctx)
	return id, nil
}

// UpdateStockIn updates qty/date of a stock-in event and emits a snapshot.
func (s *Store) UpdateStockIn(ctx context.Context, e model.StockIn) error {
	s.stockInMu.Lock()
	defer s.stockInMu.Unlock()

	e.Date = model.Day(e.Date)
	if err := s.repo.UpdateStockIn(ctx, e); err != nil {
		return err
	}
	s.publishStockIns(ctx)
	return nil
}

// DeleteStockIn deletes a stock-in event by id and emits a snapshot.
func (s *Store) DeleteStockIn(ctx context.Context, id int64) error {
	s.stockInMu.Lock()
	defer s.stockInMu.Unlock()

	if err := s.repo.DeleteStockIn(ctx, id); err != nil {
		return err
	}
	s.publishStockIns(ctx)
	return nil
}

// GetStockIn fetches a stock-in event by id.
func (s *Store) GetStockIn(ctx context.Context, id int64) (*model.StockIn, error) {
	return s.repo.GetStockIn(ctx, id)
}

// ListStockIns returns the current stock-in snapshot, newest date first.
func (s *Store) ListStockIns(ctx context.Context) ([]model.StockIn, error) {
	return s.repo.ListStockIns(ctx)
}

// TotalIn sums stock-in quantities for one balloon.
func (s *Store) TotalIn(ctx context.Context, balloonID int64) (int, error) {
	return s.repo.TotalIn(ctx, balloonID)
}

// InsertSale inserts a sale and emits a snapshot.
func (s *Store) InsertSale(ctx context.Context, e model.Sale) (int64, error) {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	e.Date = model.Day(e.Date)
	id, err := s.repo.InsertSale(ctx, e)
	if err != nil {
		return 0, err
	}
	s.publishSales(ctx)
	return id, nil
}

// UpdateSale updates qty/customer/date of a sale and emits a snapshot.
func (s *Store) UpdateSale(ctx context.Context, e model.Sale) error {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	e.Date = model.Day(e.Date)
	if err := s.repo.UpdateSale(ctx, e); err != nil {
		return err
	}
	s.publishSales(ctx)
	return nil
}

// DeleteSale deletes a sale by id and emits a snapshot.
func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.publishSales(ctx)
	return nil
}

// GetSale fetches a sale by id.
func (s *Store) GetSale(ctx context.Context, id int64) (*model.Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns the current sales snapshot, newest date first.
func (s *Store) ListSales(ctx context.Context) ([]model.Sale, error) {
	return s.repo.ListSales(ctx)
}

// TotalOut sums sale quantities for one balloon.
func (s *Store) TotalOut(ctx context.Context, balloonID int64) (int, error) {
	return s.repo.TotalOut(ctx, balloonID)
}

// publishBalloons reloads and broadcasts the balloons snapshot. Called with
// balloonsMu held, after a successful write. A reload failure here cannot
// roll back the committed write, so observers simply keep their last
// consistent snapshot.
func (s *Store) publishBalloons(ctx context.Context) {
	s.revision.Add(1)
	if snapshot, err := s.repo.ListBalloons(ctx); err == nil {
		s.balloons.publish(snapshot)
	}
}

func (s *Store) publishStockIns(ctx context.Context) {
	s.revision.Add(1)
	if snapshot, err := s.repo.ListStockIns(ctx); err == nil {
		s.stockIn.publish(snapshot)
	}
}

func (s *Store) publishSales(ctx context.Context) {
	s.revision.Add(1)
	if snapshot, err := s.repo.ListSales(ctx); err == nil {
		s.sales.publish(snapshot)
	}
}
