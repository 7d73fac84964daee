package liveview

import (
	"slices"
	"time"

	"github.com/kioskworks/counter-backend/pkg/currency"
)

// LineItemView is one ordered unit with its catalog annotation.
type LineItemView struct {
	LineNo     int        `json:"line_no"`
	ProductID  int64      `json:"product_id"`
	Name       string     `json:"name"`
	Price      int64      `json:"price"`
	PriceLabel string     `json:"price_label"`
	SuppliedAt *time.Time `json:"supplied_at"`
}

// ProductCountView collapses an order's units of one product into a
// count plus how many of them are already supplied.
type ProductCountView struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	Filename      string `json:"filename"`
	Price         int64  `json:"price"`
	PriceLabel    string `json:"price_label"`
	Count         int    `json:"count"`
	SuppliedCount int    `json:"supplied_count"`
}

// IncomingOrderView is one ticket on the kitchen's incoming board.
type IncomingOrderView struct {
	OrderID    int64              `json:"order_id"`
	PlacedAt   time.Time          `json:"placed_at"`
	Items      []LineItemView     `json:"items"`
	Products   []ProductCountView `json:"products"`
	TotalCount int                `json:"total_count"`
}

// ResolvedOrderView is one completed or canceled ticket, price-totaled
// for the order history board.
type ResolvedOrderView struct {
	OrderID         int64              `json:"order_id"`
	PlacedAt        time.Time          `json:"placed_at"`
	CanceledAt      *time.Time         `json:"canceled_at"`
	CompletedAt     *time.Time         `json:"completed_at"`
	Items           []LineItemView     `json:"items"`
	Products        []ProductCountView `json:"products"`
	TotalPrice      int64              `json:"total_price"`
	TotalPriceLabel string             `json:"total_price_label"`
}

// orderRow is the flattened join of orders, ordered_items, and
// products, pre-sorted by (order_id, product_id, line_no).
type orderRow struct {
	OrderID     int64
	LineNo      int
	ProductID   int64
	Name        string
	Filename    string
	Price       int64
	PlacedAt    time.Time
	CanceledAt  *time.Time
	CompletedAt *time.Time
	SuppliedAt  *time.Time
}

func rowOrderID(r orderRow) int64   { return r.OrderID }
func rowProductID(r orderRow) int64 { return r.ProductID }

func buildIncomingViews(rows []orderRow) []IncomingOrderView {
	views := make([]IncomingOrderView, 0)
	for orderID, group := range Groups(slices.Values(rows), rowOrderID) {
		items, products, _ := collectLines(group)
		views = append(views, IncomingOrderView{
			OrderID:    orderID,
			PlacedAt:   group[0].PlacedAt,
			Items:      items,
			Products:   products,
			TotalCount: len(items),
		})
	}
	return views
}

func buildResolvedViews(rows []orderRow) []ResolvedOrderView {
	views := make([]ResolvedOrderView, 0)
	for orderID, group := range Groups(slices.Values(rows), rowOrderID) {
		items, products, total := collectLines(group)
		views = append(views, ResolvedOrderView{
			OrderID:         orderID,
			PlacedAt:        group[0].PlacedAt,
			CanceledAt:      group[0].CanceledAt,
			CompletedAt:     group[0].CompletedAt,
			Items:           items,
			Products:        products,
			TotalPrice:      total,
			TotalPriceLabel: currency.FormatYen(total),
		})
	}
	return views
}

func collectLines(group []orderRow) ([]LineItemView, []ProductCountView, int64) {
	items := make([]LineItemView, 0, len(group))
	products := make([]ProductCountView, 0)
	var total int64

	for productID, units := range Groups(slices.Values(group), rowProductID) {
		product := ProductCountView{
			ProductID:  productID,
			Name:       units[0].Name,
			Filename:   units[0].Filename,
			Price:      units[0].Price,
			PriceLabel: currency.FormatYen(units[0].Price),
		}
		for _, unit := range units {
			items = append(items, LineItemView{
				LineNo:     unit.LineNo,
				ProductID:  unit.ProductID,
				Name:       unit.Name,
				Price:      unit.Price,
				PriceLabel: currency.FormatYen(unit.Price),
				SuppliedAt: unit.SuppliedAt,
			})
			product.Count++
			if unit.SuppliedAt != nil {
				product.SuppliedCount++
			}
			total += unit.Price
		}
		products = append(products, product)
	}

	slices.SortFunc(items, func(a, b LineItemView) int { return a.LineNo - b.LineNo })
	return items, products, total
}
