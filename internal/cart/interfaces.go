package cart

import (
	"context"

	"github.com/kioskworks/counter-backend/pkg/db/models"
)

// ProductFinder resolves catalog entries added to a cart.
type ProductFinder interface {
	FindByID(ctx context.Context, productID int64) (*models.Product, error)
}

// OrderPlacer converts a finalized cart into a durable order.
type OrderPlacer interface {
	Place(ctx context.Context, productIDs []int64) (int64, error)
}
