package orders

import (
	"context"

	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
)

// StockGate is consulted before a placement is persisted. The default
// gate admits everything, matching how the counter has always run; the
// ceiling gate enforces the catalog's no_stock limits when the feature
// flag turns it on.
type StockGate interface {
	Reserve(ctx context.Context, productIDs []int64) error
}

// AllowAllStock never refuses a placement.
type AllowAllStock struct{}

func (AllowAllStock) Reserve(ctx context.Context, productIDs []int64) error {
	return nil
}

// CeilingStock refuses placements that would push a product past its
// no_stock ceiling. Units in canceled orders do not count against the
// ceiling; a null no_stock means unlimited.
type CeilingStock struct {
	repo Repository
}

func NewCeilingStock(repo Repository) *CeilingStock {
	return &CeilingStock{repo: repo}
}

func (g *CeilingStock) Reserve(ctx context.Context, productIDs []int64) error {
	requested := make(map[int64]int64, len(productIDs))
	for _, id := range productIDs {
		requested[id]++
	}

	distinct := make([]int64, 0, len(requested))
	for id := range requested {
		distinct = append(distinct, id)
	}
	products, err := g.repo.FindProductsByIDs(ctx, distinct)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products for stock check")
	}

	exhausted := make([]int64, 0)
	for _, product := range products {
		if product.NoStock == nil {
			continue
		}
		sold, err := g.repo.CountUnitsByProduct(ctx, product.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sold units")
		}
		if sold+requested[product.ProductID] > *product.NoStock {
			exhausted = append(exhausted, product.ProductID)
		}
	}
	if len(exhausted) > 0 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "product out of stock").
			WithDetails(map[string]any{"product_ids": exhausted})
	}
	return nil
}
