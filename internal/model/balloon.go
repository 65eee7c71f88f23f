package model

// Balloon represents a distinct product: code/size/color/manufacturer
// identify it, price is the current unit price.
type Balloon struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Size         string  `json:"size"`
	Color        string  `json:"color"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer"`
}
