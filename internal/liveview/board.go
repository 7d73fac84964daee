package liveview

import (
	"slices"
	"time"
)

// BoardSort selects the ordering of the per-product kitchen board.
type BoardSort string

const (
	BoardSortProductID BoardSort = "product_id"
	BoardSortPlacedAt  BoardSort = "placed_at"
	BoardSortCount     BoardSort = "count"
)

// ValidBoardSort reports whether the query parameter names a known sort.
func ValidBoardSort(s string) bool {
	switch BoardSort(s) {
	case BoardSortProductID, BoardSortPlacedAt, BoardSortCount:
		return true
	}
	return false
}

// ProductBoardEntry aggregates the outstanding (unsupplied) units of
// one product across every incoming order.
type ProductBoardEntry struct {
	ProductID      int64     `json:"product_id"`
	Name           string    `json:"name"`
	Filename       string    `json:"filename"`
	Count          int       `json:"count"`
	FirstOrderedAt time.Time `json:"first_ordered_at"`
	OrderIDs       []int64   `json:"order_ids"`
}

func buildBoard(rows []boardRow, sortBy BoardSort) []ProductBoardEntry {
	entries := make([]ProductBoardEntry, 0)
	for productID, units := range Groups(slices.Values(rows), func(r boardRow) int64 { return r.ProductID }) {
		entry := ProductBoardEntry{
			ProductID:      productID,
			Name:           units[0].Name,
			Filename:       units[0].Filename,
			Count:          len(units),
			FirstOrderedAt: units[0].PlacedAt,
		}
		for _, unit := range units {
			if unit.PlacedAt.Before(entry.FirstOrderedAt) {
				entry.FirstOrderedAt = unit.PlacedAt
			}
			if n := len(entry.OrderIDs); n == 0 || entry.OrderIDs[n-1] != unit.OrderID {
				entry.OrderIDs = append(entry.OrderIDs, unit.OrderID)
			}
		}
		entries = append(entries, entry)
	}

	switch sortBy {
	case BoardSortPlacedAt:
		slices.SortStableFunc(entries, func(a, b ProductBoardEntry) int {
			return a.FirstOrderedAt.Compare(b.FirstOrderedAt)
		})
	case BoardSortCount:
		// Busiest products first.
		slices.SortStableFunc(entries, func(a, b ProductBoardEntry) int {
			return b.Count - a.Count
		})
	default:
		// Rows already arrive in product-id order.
	}
	return entries
}
