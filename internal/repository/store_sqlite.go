package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"balloon-stock-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

const dateLayout = "2006-01-02"

// SQLiteStoreRepository implements StoreRepository using SQLite.
// WAL mode keeps concurrent snapshot reads cheap while writes stay serialized.
type SQLiteStoreRepository struct {
	db *sql.DB
}

// NewSQLiteStoreRepository creates a new SQLite store repository.
// dbPath is the path to the SQLite database file (e.g., "./data/balloons.db")
func NewSQLiteStoreRepository(dbPath string) (*SQLiteStoreRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStoreRepository] Initialized with database: %s", dbPath)
	return &SQLiteStoreRepository{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS balloons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL,
		size TEXT NOT NULL,
		color TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		manufacturer TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS stock_in (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		balloon_id INTEGER NOT NULL,
		qty INTEGER NOT NULL,
		date TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		balloon_id INTEGER NOT NULL,
		qty INTEGER NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_stock_in_balloon ON stock_in(balloon_id);
	CREATE INDEX IF NOT EXISTS idx_stock_in_date ON stock_in(date);
	CREATE INDEX IF NOT EXISTS idx_sales_balloon ON sales(balloon_id);
	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);
	`
	_, err := db.Exec(query)
	return err
}

// InsertBalloon inserts a balloon and returns its new id.
func (r *SQLiteStoreRepository) InsertBalloon(ctx context.Context, b model.Balloon) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO balloons (code, size, color, price, manufacturer) VALUES (?, ?, ?, ?, ?)`,
		b.Code, b.Size, b.Color, b.Price, b.Manufacturer)
	if err != nil {
		return 0, fmt.Errorf("failed to insert balloon: %w", err)
	}
	return res.LastInsertId()
}

// UpdateBalloon updates all descriptive fields of an existing balloon.
func (r *SQLiteStoreRepository) UpdateBalloon(ctx context.Context, b model.Balloon) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE balloons SET code = ?, size = ?, color = ?, price = ?, manufacturer = ? WHERE id = ?`,
		b.Code, b.Size, b.Color, b.Price, b.Manufacturer, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update balloon: %w", err)
	}
	return requireAffected(res)
}

// DeleteBalloonCascade removes the balloon's events, then the balloon, in one
// transaction.
func (r *SQLiteStoreRepository) DeleteBalloonCascade(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_in WHERE balloon_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete stock-in events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE balloon_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sales: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM balloons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete balloon: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// GetBalloon fetches a balloon by id. Returns ErrNotFound when absent.
func (r *SQLiteStoreRepository) GetBalloon(ctx context.Context, id int64) (*model.Balloon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, size, color, price, manufacturer FROM balloons WHERE id = ?`, id)
	return scanBalloon(row)
}

// ListBalloons returns all balloons ordered by manufacturer, code, size.
func (r *SQLiteStoreRepository) ListBalloons(ctx context.Context) ([]model.Balloon, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, size, color, price, manufacturer FROM balloons ORDER BY manufacturer, code, size`)
	if err != nil {
		return nil, fmt.Errorf("failed to list balloons: %w", err)
	}
	defer rows.Close()

	var out []model.Balloon
	for rows.Next() {
		var b model.Balloon
		if err := rows.Scan(&b.ID, &b.Code, &b.Size, &b.Color, &b.Price, &b.Manufacturer); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindBalloonByAttrs matches the exact identity tuple.
func (r *SQLiteStoreRepository) FindBalloonByAttrs(ctx context.Context, code, size, color, manufacturer string) (*model.Balloon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, size, color, price, manufacturer FROM balloons
		 WHERE code = ? AND size = ? AND color = ? AND manufacturer = ? LIMIT 1`,
		code, size, color, manufacturer)
	return scanBalloon(row)
}

// ListManufacturers returns distinct non-empty manufacturers, sorted.
func (r *SQLiteStoreRepository) ListManufacturers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT manufacturer FROM balloons WHERE manufacturer <> '' ORDER BY manufacturer`)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertStockIn inserts a stock-in event and returns its new id.
func (r *SQLiteStoreRepository) InsertStockIn(ctx context.Context, e model.StockIn) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stock_in (balloon_id, qty, date) VALUES (?, ?, ?)`,
		e.BalloonID, e.Qty, e.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to insert stock-in event: %w", err)
	}
	return res.LastInsertId()
}

// UpdateStockIn updates qty and date of an existing stock-in event.
func (r *SQLiteStoreRepository) UpdateStockIn(ctx context.Context, e model.StockIn) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stock_in SET qty = ?, date = ? WHERE id = ?`,
		e.Qty, e.Date.Format(dateLayout), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock-in event: %w", err)
	}
	return requireAffected(res)
}

// DeleteStockIn deletes a stock-in event by id.
func (r *SQLiteStoreRepository) DeleteStockIn(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock_in WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock-in event: %w", err)
	}
	return requireAffected(res)
}

// GetStockIn fetches a stock-in event by id.
func (r *SQLiteStoreRepository) GetStockIn(ctx context.Context, id int64) (*model.StockIn, error) {
	var e model.StockIn
	var date string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, balloon_id, qty, date FROM stock_in WHERE id = ?`, id).
		Scan(&e.ID, &e.BalloonID, &e.Qty, &date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stock-in event: %w", err)
	}
	if e.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListStockIns returns all stock-in events, newest date first.
func (r *SQLiteStoreRepository) ListStockIns(ctx context.Context) ([]model.StockIn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, balloon_id, qty, date FROM stock_in ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock-in events: %w", err)
	}
	defer rows.Close()

	var out []model.StockIn
	for rows.Next() {
		var e model.StockIn
		var date string
		if err := rows.Scan(&e.ID, &e.BalloonID, &e.Qty, &date); err != nil {
			return nil, err
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalIn sums stock-in quantities for one balloon.
func (r *SQLiteStoreRepository) TotalIn(ctx context.Context, balloonID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM stock_in WHERE balloon_id = ?`, balloonID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum stock-in quantities: %w", err)
	}
	return total, nil
}

// InsertSale inserts a sale and returns its new id.
func (r *SQLiteStoreRepository) InsertSale(ctx context.Context, e model.Sale) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sales (balloon_id, qty, customer_name, date) VALUES (?, ?, ?, ?)`,
		e.BalloonID, e.Qty, e.CustomerName, e.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}
	return res.LastInsertId()
}

// UpdateSale updates qty, customer and date of an existing sale.
func (r *SQLiteStoreRepository) UpdateSale(ctx context.Context, e model.Sale) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sales SET qty = ?, customer_name = ?, date = ? WHERE id = ?`,
		e.Qty, e.CustomerName, e.Date.Format(dateLayout), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	return requireAffected(res)
}

// DeleteSale deletes a sale by id.
func (r *SQLiteStoreRepository) DeleteSale(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return requireAffected(res)
}

// GetSale fetches a sale by id.
func (r *SQLiteStoreRepository) GetSale(ctx context.Context, id int64) (*model.Sale, error) {
	var e model.Sale
	var date string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, balloon_id, qty, customer_name, date FROM sales WHERE id = ?`, id).
		Scan(&e.ID, &e.BalloonID, &e.Qty, &e.CustomerName, &date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if e.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListSales returns all sales, newest date first.
func (r *SQLiteStoreRepository) ListSales(ctx context.Context) ([]model.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, balloon_id, qty, customer_name, date FROM sales ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var out []model.Sale
	for rows.Next() {
		var e model.Sale
		var date string
		if err := rows.Scan(&e.ID, &e.BalloonID, &e.Qty, &e.CustomerName, &date); err != nil {
			return nil, err
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalOut sums sale quantities for one balloon.
func (r *SQLiteStoreRepository) TotalOut(ctx context.Context, balloonID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM sales WHERE balloon_id = ?`, balloonID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum sale quantities: %w", err)
	}
	return total, nil
}

// Close closes the database connection.
func (r *SQLiteStoreRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteStoreRepository implements StoreRepository
var _ StoreRepository = (*SQLiteStoreRepository)(nil)
