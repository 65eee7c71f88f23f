// Package sortkey defines the natural inventory ordering:
// manufacturer, then balloon code, then size, with codes and sizes compared
// by their numeric component so "2" sorts before "10".
package sortkey

import (
	"math"
	"sort"
	"strings"

	"balloon-stock-api/internal/model"
)

// maxKey sorts codes and sizes without any digits after all numeric ones.
const maxKey = math.MaxInt64

// CodeKey parses the leading run of decimal digits in the trimmed code.
// A code with no leading digits sorts last.
func CodeKey(code string) int64 {
	s := strings.TrimSpace(code)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return maxKey
	}
	return parseDigits(s[:i])
}

// SizeKey parses the first run of decimal digits found anywhere in the
// trimmed size string, so `10"` and `12 inch` compare by magnitude.
func SizeKey(size string) int64 {
	s := strings.TrimSpace(size)
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return maxKey
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return parseDigits(s[start:end])
}

func parseDigits(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		if n > (maxKey-int64(s[i]-'0'))/10 {
			return maxKey
		}
		n = n*10 + int64(s[i]-'0')
	}
	return n
}

// Less orders two balloons by manufacturer (lowercased, empty first), then
// numeric code key, then numeric size key.
func Less(a, b model.Balloon) bool {
	am := strings.ToLower(strings.TrimSpace(a.Manufacturer))
	bm := strings.ToLower(strings.TrimSpace(b.Manufacturer))
	if am != bm {
		return am < bm
	}
	if ak, bk := CodeKey(a.Code), CodeKey(b.Code); ak != bk {
		return ak < bk
	}
	return SizeKey(a.Size) < SizeKey(b.Size)
}

// SortRows sorts inventory rows in place using the natural ordering.
// The sort is stable, so re-sorting a sorted list keeps its order.
func SortRows(rows []model.InventoryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(asBalloon(rows[i]), asBalloon(rows[j]))
	})
}

// SortBalloons sorts balloons in place using the natural ordering.
func SortBalloons(balloons []model.Balloon) {
	sort.SliceStable(balloons, func(i, j int) bool {
		return Less(balloons[i], balloons[j])
	})
}

func asBalloon(r model.InventoryRow) model.Balloon {
	return model.Balloon{
		Code:         r.Code,
		Size:         r.Size,
		Manufacturer: r.Manufacturer,
	}
}
