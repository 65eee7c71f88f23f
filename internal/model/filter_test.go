package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOperationFilter_BlankMatchesEverything(t *testing.T) {
	var f OperationFilter
	if !f.IsZero() {
		t.Error("zero filter should report IsZero")
	}
	it := SaleItem{Date: date(2024, 1, 5), Customer: "Jane", Code: "B1", Size: `10"`, Color: "Red"}
	if !f.MatchesSale(it) {
		t.Error("blank filter must match any sale")
	}
	if !f.MatchesStockIn(StockInItem{Date: date(2024, 1, 1), Code: "B1"}) {
		t.Error("blank filter must match any stock-in")
	}
}

func TestOperationFilter_DateRangeInclusive(t *testing.T) {
	from := date(2024, 1, 1)
	to := date(2024, 1, 31)
	f := OperationFilter{DateFrom: &from, DateTo: &to}

	if !f.MatchesStockIn(StockInItem{Date: date(2024, 1, 1)}) {
		t.Error("date_from boundary must be inclusive")
	}
	if !f.MatchesStockIn(StockInItem{Date: date(2024, 1, 31)}) {
		t.Error("date_to boundary must be inclusive")
	}
	if f.MatchesStockIn(StockInItem{Date: date(2023, 12, 31)}) {
		t.Error("date before range must not match")
	}
	if f.MatchesStockIn(StockInItem{Date: date(2024, 2, 1)}) {
		t.Error("date after range must not match")
	}
}

func TestOperationFilter_CodePrefixCaseInsensitive(t *testing.T) {
	f := OperationFilter{Code: "re"}
	if !f.MatchesStockIn(StockInItem{Code: "RED-10"}) {
		t.Error("prefix match should ignore case")
	}
	if f.MatchesStockIn(StockInItem{Code: "B-RED"}) {
		t.Error("code clause is prefix match, not substring")
	}
}

func TestOperationFilter_ExactClausesCaseInsensitive(t *testing.T) {
	f := OperationFilter{Size: `10"`, Color: "red", Manufacturer: "acme"}
	it := StockInItem{Size: `10"`, Color: "Red", Manufacturer: "ACME"}
	if !f.MatchesStockIn(it) {
		t.Error("size/color/manufacturer should match case-insensitively")
	}
	it.Color = "Reddish"
	if f.MatchesStockIn(it) {
		t.Error("color clause is exact match, not prefix")
	}
}

func TestOperationFilter_CustomerSubstring(t *testing.T) {
	f := OperationFilter{Customer: "an"}
	if !f.MatchesSale(SaleItem{Customer: "Jane"}) {
		t.Error("customer clause should substring-match case-insensitively")
	}
	if f.MatchesSale(SaleItem{Customer: "Bob"}) {
		t.Error("non-matching customer must not pass")
	}
	// customer clause does not apply to stock-in history
	if !f.MatchesStockIn(StockInItem{Code: "B1"}) {
		t.Error("customer clause must be ignored for stock-in items")
	}
}

func TestOperationFilter_BlankFieldsImposeNoConstraint(t *testing.T) {
	f := OperationFilter{Code: "  ", Color: "\t"}
	if !f.MatchesStockIn(StockInItem{Code: "X", Color: "Y"}) {
		t.Error("whitespace-only clauses must not constrain")
	}
}

func TestDay_TruncatesToMidnightUTC(t *testing.T) {
	d := Day(time.Date(2024, 3, 15, 18, 45, 12, 999, time.UTC))
	if !d.Equal(date(2024, 3, 15)) {
		t.Errorf("Day() = %v, want 2024-03-15 midnight UTC", d)
	}
}
