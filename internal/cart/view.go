package cart

import (
	"github.com/google/uuid"

	"github.com/kioskworks/counter-backend/pkg/currency"
)

// ItemView is one cart line as shown on the order screen.
type ItemView struct {
	ItemID     uuid.UUID `json:"item_id"`
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"`
	PriceLabel string    `json:"price_label"`
}

// ProductCountView aggregates duplicate selections per product, in
// first-added order.
type ProductCountView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Count     int    `json:"count"`
}

// View is the cart payload returned after every mutation.
type View struct {
	SessionKey      string             `json:"session_key"`
	Items           []ItemView         `json:"items"`
	CountedProducts []ProductCountView `json:"counted_products"`
	TotalCount      int                `json:"total_count"`
	TotalPrice      int64              `json:"total_price"`
	TotalPriceLabel string             `json:"total_price_label"`
}

func buildView(key string, items []Item, totalCount int, totalPrice int64) View {
	view := View{
		SessionKey:      key,
		Items:           make([]ItemView, 0, len(items)),
		CountedProducts: make([]ProductCountView, 0),
		TotalCount:      totalCount,
		TotalPrice:      totalPrice,
		TotalPriceLabel: currency.FormatYen(totalPrice),
	}

	counted := map[int64]int{}
	for _, item := range items {
		view.Items = append(view.Items, ItemView{
			ItemID:     item.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			Price:      item.Price,
			PriceLabel: currency.FormatYen(item.Price),
		})
		if at, ok := counted[item.ProductID]; ok {
			view.CountedProducts[at].Count++
			continue
		}
		counted[item.ProductID] = len(view.CountedProducts)
		view.CountedProducts = append(view.CountedProducts, ProductCountView{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Count:     1,
		})
	}
	return view
}
