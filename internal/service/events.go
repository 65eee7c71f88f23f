package service

import (
	"context"
	"time"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/store"
)

// EventService records and edits stock-in and sale events. Inserts verify
// that the referenced balloon exists; edits touch only the mutable fields
// (qty/date, plus customer for sales).
type EventService struct {
	store *store.Store
}

// NewEventService creates an event service.
func NewEventService(st *store.Store) *EventService {
	return &EventService{store: st}
}

// AddStockIn records a stock arrival for a balloon.
func (s *EventService) AddStockIn(ctx context.Context, balloonID int64, qty int, date time.Time) (int64, error) {
	if _, err := s.store.GetBalloon(ctx, balloonID); err != nil {
		return 0, err
	}
	return s.store.InsertStockIn(ctx, model.StockIn{
		BalloonID: balloonID,
		Qty:       qty,
		Date:      date,
	})
}

// UpdateStockIn edits the qty and date of an existing stock-in event.
func (s *EventService) UpdateStockIn(ctx context.Context, id int64, qty int, date time.Time) error {
	existing, err := s.store.GetStockIn(ctx, id)
	if err != nil {
		return err
	}
	existing.Qty = qty
	existing.Date = date
	return s.store.UpdateStockIn(ctx, *existing)
}

// DeleteStockIn removes a stock-in event.
func (s *EventService) DeleteStockIn(ctx context.Context, id int64) error {
	return s.store.DeleteStockIn(ctx, id)
}

// AddSale records a sale for a balloon.
func (s *EventService) AddSale(ctx context.Context, balloonID int64, qty int, customer string, date time.Time) (int64, error) {
	if _, err := s.store.GetBalloon(ctx, balloonID); err != nil {
		return 0, err
	}
	return s.store.InsertSale(ctx, model.Sale{
		BalloonID:    balloonID,
		Qty:          qty,
		CustomerName: customer,
		Date:         date,
	})
}

// UpdateSale edits the qty, customer and date of an existing sale.
func (s *EventService) UpdateSale(ctx context.Context, id int64, qty int, customer string, date time.Time) error {
	existing, err := s.store.GetSale(ctx, id)
	if err != nil {
		return err
	}
	existing.Qty = qty
	existing.CustomerName = customer
	existing.Date = date
	return s.store.UpdateSale(ctx, *existing)
}

// DeleteSale removes a sale.
func (s *EventService) DeleteSale(ctx context.Context, id int64) error {
	return s.store.DeleteSale(ctx, id)
}
