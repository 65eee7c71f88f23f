package model

import (
	"strings"
	"time"
)

// OperationFilter narrows a history query. Every field is optional; a nil or
// blank field imposes no constraint. Customer applies to sales only.
type OperationFilter struct {
	DateFrom     *time.Time `json:"date_from,omitempty"`
	DateTo       *time.Time `json:"date_to,omitempty"`
	Customer     string     `json:"customer,omitempty"`
	Code         string     `json:"code,omitempty"`
	Size         string     `json:"size,omitempty"`
	Color        string     `json:"color,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
}

// IsZero reports whether the filter imposes no constraint at all.
func (f OperationFilter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil &&
		strings.TrimSpace(f.Customer) == "" &&
		strings.TrimSpace(f.Code) == "" &&
		strings.TrimSpace(f.Size) == "" &&
		strings.TrimSpace(f.Color) == "" &&
		strings.TrimSpace(f.Manufacturer) == ""
}

// MatchesStockIn reports whether a joined stock-in item passes the filter.
// The customer clause is ignored for stock-in history.
func (f OperationFilter) MatchesStockIn(it StockInItem) bool {
	return f.matchesDate(it.Date) &&
		f.matchesCode(it.Code) &&
		f.matchesSize(it.Size) &&
		f.matchesColor(it.Color) &&
		f.matchesManufacturer(it.Manufacturer)
}

// MatchesSale reports whether a joined sale item passes the filter.
func (f OperationFilter) MatchesSale(it SaleItem) bool {
	if c := strings.TrimSpace(f.Customer); c != "" {
		if !strings.Contains(strings.ToLower(it.Customer), strings.ToLower(c)) {
			return false
		}
	}
	return f.matchesDate(it.Date) &&
		f.matchesCode(it.Code) &&
		f.matchesSize(it.Size) &&
		f.matchesColor(it.Color) &&
		f.matchesManufacturer(it.Manufacturer)
}

func (f OperationFilter) matchesDate(d time.Time) bool {
	if f.DateFrom != nil && d.Before(Day(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && d.After(Day(*f.DateTo)) {
		return false
	}
	return true
}

func (f OperationFilter) matchesCode(code string) bool {
	q := strings.TrimSpace(f.Code)
	if q == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(code), strings.ToLower(q))
}

func (f OperationFilter) matchesSize(size string) bool {
	q := strings.TrimSpace(f.Size)
	if q == "" {
		return true
	}
	return strings.EqualFold(size, q)
}

func (f OperationFilter) matchesColor(color string) bool {
	q := strings.TrimSpace(f.Color)
	if q == "" {
		return true
	}
	return strings.EqualFold(color, q)
}

func (f OperationFilter) matchesManufacturer(m string) bool {
	q := strings.TrimSpace(f.Manufacturer)
	if q == "" {
		return true
	}
	return strings.EqualFold(m, q)
}
