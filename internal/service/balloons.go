package service

import (
	"context"
	"errors"
	"strings"

	"balloon-stock-api/internal/model"
	"balloon-stock-api/internal/sortkey"
	"balloon-stock-api/internal/store"
)

// BalloonService covers balloon lifecycle operations, most importantly the
// find-or-create resolver used by data-entry flows so free-text attributes
// never produce duplicate balloon rows.
type BalloonService struct {
	store *store.Store
}

// NewBalloonService creates a balloon service.
func NewBalloonService(st *store.Store) *BalloonService {
	return &BalloonService{store: st}
}

// EnsureBalloon finds or creates the balloon matching the trimmed
// (code, size, color, manufacturer) tuple and returns its id.
//
// On a match, the stored row is updated when the input price is positive and
// differs, or when the stored manufacturer differs from the trimmed input; a
// non-positive price keeps the stored one. On a miss, a new balloon is
// created with price clamped to zero or above.
func (s *BalloonService) EnsureBalloon(ctx context.Context, code, size, color string, price float64, manufacturer string) (int64, error) {
	code = strings.TrimSpace(code)
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)
	manufacturer = strings.TrimSpace(manufacturer)

	existing, err := s.store.FindBalloonByAttrs(ctx, code, size, color, manufacturer)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	if existing != nil {
		if (price > 0 && price != existing.Price) || existing.Manufacturer != manufacturer {
			updated := *existing
			if price > 0 {
				updated.Price = price
			}
			updated.Manufacturer = manufacturer
			if err := s.store.UpdateBalloon(ctx, updated); err != nil {
				return 0, err
			}
		}
		return existing.ID, nil
	}

	if price < 0 {
		price = 0
	}
	return s.store.InsertBalloon(ctx, model.Balloon{
		Code:         code,
		Size:         size,
		Color:        color,
		Price:        price,
		Manufacturer: manufacturer,
	})
}

// AddBalloon inserts a balloon as given and returns its id.
func (s *BalloonService) AddBalloon(ctx context.Context, b model.Balloon) (int64, error) {
	return s.store.InsertBalloon(ctx, b)
}

// UpdateBalloon replaces all descriptive fields of an existing balloon.
func (s *BalloonService) UpdateBalloon(ctx context.Context, b model.Balloon) error {
	return s.store.UpdateBalloon(ctx, b)
}

// DeleteBalloon removes a balloon together with all of its stock-in and sale
// events.
func (s *BalloonService) DeleteBalloon(ctx context.Context, id int64) error {
	return s.store.DeleteBalloon(ctx, id)
}

// GetBalloon fetches a balloon by id.
func (s *BalloonService) GetBalloon(ctx context.Context, id int64) (*model.Balloon, error) {
	return s.store.GetBalloon(ctx, id)
}

// ListBalloons returns all balloons in the natural inventory order.
func (s *BalloonService) ListBalloons(ctx context.Context) ([]model.Balloon, error) {
	balloons, err := s.store.ListBalloons(ctx)
	if err != nil {
		return nil, err
	}
	sortkey.SortBalloons(balloons)
	return balloons, nil
}

// ListManufacturers returns distinct non-empty manufacturers for
// autocompletion.
func (s *BalloonService) ListManufacturers(ctx context.Context) ([]string, error) {
	return s.store.ListManufacturers(ctx)
}
