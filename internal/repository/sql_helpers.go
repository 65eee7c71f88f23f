package repository

import (
	"database/sql"
	"fmt"
	"time"

	"balloon-stock-api/internal/model"
)

// requireAffected maps a zero-row mutation to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBalloon(row *sql.Row) (*model.Balloon, error) {
	var b model.Balloon
	err := row.Scan(&b.ID, &b.Code, &b.Size, &b.Color, &b.Price, &b.Manufacturer)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan balloon: %w", err)
	}
	return &b, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}
