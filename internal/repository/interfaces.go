package repository

import (
	"context"
	"errors"

	"balloon-stock-api/internal/model"
)

// ErrNotFound is returned when an update, delete, or lookup references an id
// that does not exist. Mutations never partially apply before returning it.
var ErrNotFound = errors.New("record not found")

// StoreRepository defines durable storage for the three entity collections.
// Implementations must keep the cascade delete atomic: either the balloon and
// all of its events are removed, or nothing is.
type StoreRepository interface {
	// Balloons
	InsertBalloon(ctx context.Context, b model.Balloon) (int64, error)
	UpdateBalloon(ctx context.Context, b model.Balloon) error
	DeleteBalloonCascade(ctx context.Context, id int64) error
	GetBalloon(ctx context.Context, id int64) (*model.Balloon, error)
	// ListBalloons returns all balloons ordered by manufacturer, code, size.
	ListBalloons(ctx context.Context) ([]model.Balloon, error)
	// FindBalloonByAttrs matches on the exact (code, size, color, manufacturer)
	// tuple. Returns ErrNotFound when no row matches.
	FindBalloonByAttrs(ctx context.Context, code, size, color, manufacturer string) (*model.Balloon, error)
	// ListManufacturers returns distinct non-empty manufacturers, sorted.
	ListManufacturers(ctx context.Context) ([]string, error)

	// Stock-in events
	InsertStockIn(ctx context.Context, e model.StockIn) (int64, error)
	UpdateStockIn(ctx context.Context, e model.StockIn) error
	DeleteStockIn(ctx context.Context, id int64) error
	GetStockIn(ctx context.Context, id int64) (*model.StockIn, error)
	// ListStockIns returns all stock-in events ordered by date descending,
	// then id descending.
	ListStockIns(ctx context.Context) ([]model.StockIn, error)
	// TotalIn sums stock-in quantities for one balloon.
	TotalIn(ctx context.Context, balloonID int64) (int, error)

	// Sale events
	InsertSale(ctx context.Context, e model.Sale) (int64, error)
	UpdateSale(ctx context.Context, e model.Sale) error
	DeleteSale(ctx context.Context, id int64) error
	GetSale(ctx context.Context, id int64) (*model.Sale, error)
	// ListSales returns all sales ordered by date descending, then id descending.
	ListSales(ctx context.Context) ([]model.Sale, error)
	// TotalOut sums sale quantities for one balloon.
	TotalOut(ctx context.Context, balloonID int64) (int, error)

	// Close closes the underlying database connection.
	Close() error
}
