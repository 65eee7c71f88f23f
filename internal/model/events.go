package model

import "time"

// StockIn records a quantity added to a balloon's stock on a calendar date.
// Date carries no time component; it is normalized to midnight UTC.
type StockIn struct {
	ID        int64     `json:"id"`
	BalloonID int64     `json:"balloon_id"`
	Qty       int       `json:"qty"`
	Date      time.Time `json:"date"`
}

// Sale records a quantity sold to a customer on a calendar date.
type Sale struct {
	ID           int64     `json:"id"`
	BalloonID    int64     `json:"balloon_id"`
	Qty          int       `json:"qty"`
	CustomerName string    `json:"customer_name"`
	Date         time.Time `json:"date"`
}

// Day truncates t to a calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
