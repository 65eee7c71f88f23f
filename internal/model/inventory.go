package model

// InventoryRow is the derived per-balloon stock summary. QtyIn and QtyOut are
// the exact sums over the currently live events; Stock may go negative since
// oversell is not prevented at the data layer.
type InventoryRow struct {
	BalloonID    int64   `json:"balloon_id"`
	Code         string  `json:"code"`
	Size         string  `json:"size"`
	Color        string  `json:"color"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer"`
	QtyIn        int     `json:"qty_in"`
	QtyOut       int     `json:"qty_out"`
	Stock        int     `json:"stock"`
}
