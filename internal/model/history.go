package model

import "time"

// StockInItem is a stock-in event joined with its balloon's descriptive
// fields for display and filtering.
type StockInItem struct {
	ID           int64     `json:"id"`
	BalloonID    int64     `json:"balloon_id"`
	Date         time.Time `json:"date"`
	Qty          int       `json:"qty"`
	Code         string    `json:"code"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	Price        float64   `json:"price"`
	Manufacturer string    `json:"manufacturer"`
}

// SaleItem is a sale event joined with its balloon's descriptive fields.
type SaleItem struct {
	ID           int64     `json:"id"`
	BalloonID    int64     `json:"balloon_id"`
	Date         time.Time `json:"date"`
	Qty          int       `json:"qty"`
	Customer     string    `json:"customer"`
	Code         string    `json:"code"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	Price        float64   `json:"price"`
	Manufacturer string    `json:"manufacturer"`
}
