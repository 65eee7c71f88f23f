package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"balloon-stock-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStoreRepository implements StoreRepository using MySQL, for
// deployments where the shop data lives on a shared database server.
type MySQLStoreRepository struct {
	db *sql.DB
}

// NewMySQLStoreRepository creates a new MySQL store repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLStoreRepository(dsn string) (*MySQLStoreRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLStoreRepository] Initialized")
	return &MySQLStoreRepository{db: db}, nil
}

func createMySQLTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS balloons (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			code VARCHAR(64) NOT NULL,
			size VARCHAR(64) NOT NULL,
			color VARCHAR(64) NOT NULL,
			price DOUBLE NOT NULL DEFAULT 0,
			manufacturer VARCHAR(128) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS stock_in (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			balloon_id BIGINT NOT NULL,
			qty INT NOT NULL,
			date DATE NOT NULL,
			INDEX idx_stock_in_balloon (balloon_id),
			INDEX idx_stock_in_date (date)
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			balloon_id BIGINT NOT NULL,
			qty INT NOT NULL,
			customer_name VARCHAR(255) NOT NULL DEFAULT '',
			date DATE NOT NULL,
			INDEX idx_sales_balloon (balloon_id),
			INDEX idx_sales_date (date)
		)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// InsertBalloon inserts a balloon and returns its new id.
func (r *MySQLStoreRepository) InsertBalloon(ctx context.Context, b model.Balloon) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO balloons (code, size, color, price, manufacturer) VALUES (?, ?, ?, ?, ?)`,
		b.Code, b.Size, b.Color, b.Price, b.Manufacturer)
	if err != nil {
		return 0, fmt.Errorf("failed to insert balloon: %w", err)
	}
	return res.LastInsertId()
}

// UpdateBalloon updates all descriptive fields of an existing balloon.
func (r *MySQLStoreRepository) UpdateBalloon(ctx context.Context, b model.Balloon) error {
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
func (r *MySQLStoreRepository) DeleteBalloonCascade(ctx context.Context, id int64) error {
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

// GetBalloon fetches a balloon by id.
func (r *MySQLStoreRepository) GetBalloon(ctx context.Context, id int64) (*model.Balloon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, size, color, price, manufacturer FROM balloons WHERE id = ?`, id)
	return scanBalloon(row)
}

// ListBalloons returns all balloons ordered by manufacturer, code, size.
func (r *MySQLStoreRepository) ListBalloons(ctx context.Context) ([]model.Balloon, error) {
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

// FindBalloonByAttrs matches the exact identity tuple. MySQL collations are
// case-insensitive by default, so the comparison uses BINARY to stay
// consistent with the sqlite backend.
func (r *MySQLStoreRepository) FindBalloonByAttrs(ctx context.Context, code, size, color, manufacturer string) (*model.Balloon, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, size, color, price, manufacturer FROM balloons
		 WHERE BINARY code = ? AND BINARY size = ? AND BINARY color = ? AND BINARY manufacturer = ? LIMIT 1`,
		code, size, color, manufacturer)
	return scanBalloon(row)
}

// ListManufacturers returns distinct non-empty manufacturers, sorted.
func (r *MySQLStoreRepository) ListManufacturers(ctx context.Context) ([]string, error) {
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
func (r *MySQLStoreRepository) InsertStockIn(ctx context.Context, e model.StockIn) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stock_in (balloon_id, qty, date) VALUES (?, ?, ?)`,
		e.BalloonID, e.Qty, e.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to insert stock-in event: %w", err)
	}
	return res.LastInsertId()
}

// UpdateStockIn updates qty and date of an existing stock-in event.
func (r *MySQLStoreRepository) UpdateStockIn(ctx context.Context, e model.StockIn) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stock_in SET qty = ?, date = ? WHERE id = ?`,
		e.Qty, e.Date.Format(dateLayout), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock-in event: %w", err)
	}
	return requireAffected(res)
}

// DeleteStockIn deletes a stock-in event by id.
func (r *MySQLStoreRepository) DeleteStockIn(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock_in WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock-in event: %w", err)
	}
	return requireAffected(res)
}

// GetStockIn fetches a stock-in event by id.
func (r *MySQLStoreRepository) GetStockIn(ctx context.Context, id int64) (*model.StockIn, error) {
	var e model.StockIn
	var date time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, balloon_id, qty, date FROM stock_in WHERE id = ?`, id).
		Scan(&e.ID, &e.BalloonID, &e.Qty, &date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stock-in event: %w", err)
	}
	e.Date = model.Day(date)
	return &e, nil
}

// ListStockIns returns all stock-in events, newest date first.
func (r *MySQLStoreRepository) ListStockIns(ctx context.Context) ([]model.StockIn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, balloon_id, qty, date FROM stock_in ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock-in events: %w", err)
	}
	defer rows.Close()

	var out []model.StockIn
	for rows.Next() {
		var e model.StockIn
		var date time.Time
		if err := rows.Scan(&e.ID, &e.BalloonID, &e.Qty, &date); err != nil {
			return nil, err
		}
		e.Date = model.Day(date)
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalIn sums stock-in quantities for one balloon.
func (r *MySQLStoreRepository) TotalIn(ctx context.Context, balloonID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM stock_in WHERE balloon_id = ?`, balloonID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum stock-in quantities: %w", err)
	}
	return total, nil
}

// InsertSale inserts a sale and returns its new id.
func (r *MySQLStoreRepository) InsertSale(ctx context.Context, e model.Sale) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sales (balloon_id, qty, customer_name, date) VALUES (?, ?, ?, ?)`,
		e.BalloonID, e.Qty, e.CustomerName, e.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}
	return res.LastInsertId()
}

// UpdateSale updates qty, customer and date of an existing sale.
func (r *MySQLStoreRepository) UpdateSale(ctx context.Context, e model.Sale) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sales SET qty = ?, customer_name = ?, date = ? WHERE id = ?`,
		e.Qty, e.CustomerName, e.Date.Format(dateLayout), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	return requireAffected(res)
}

// DeleteSale deletes a sale by id.
func (r *MySQLStoreRepository) DeleteSale(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return requireAffected(res)
}

// GetSale fetches a sale by id.
func (r *MySQLStoreRepository) GetSale(ctx context.Context, id int64) (*model.Sale, error) {
	var e model.Sale
	var date time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, balloon_id, qty, customer_name, date FROM sales WHERE id = ?`, id).
		Scan(&e.ID, &e.BalloonID, &e.Qty, &e.CustomerName, &date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	e.Date = model.Day(date)
	return &e, nil
}

// ListSales returns all sales, newest date first.
func (r *MySQLStoreRepository) ListSales(ctx context.Context) ([]model.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, balloon_id, qty, customer_name, date FROM sales ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var out []model.Sale
	for rows.Next() {
		var e model.Sale
		var date time.Time
		if err := rows.Scan(&e.ID, &e.BalloonID, &e.Qty, &e.CustomerName, &date); err != nil {
			return nil, err
		}
		e.Date = model.Day(date)
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalOut sums sale quantities for one balloon.
func (r *MySQLStoreRepository) TotalOut(ctx context.Context, balloonID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM sales WHERE balloon_id = ?`, balloonID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum sale quantities: %w", err)
	}
	return total, nil
}

// Close closes the database connection.
func (r *MySQLStoreRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLStoreRepository implements StoreRepository
var _ StoreRepository = (*MySQLStoreRepository)(nil)
