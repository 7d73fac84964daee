package orders

import (
	"context"
	"time"

	"github.com/kioskworks/counter-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface for placed orders and their units.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	MaxOrderID(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderedItems(ctx context.Context, items []models.OrderedItem) error

	FindOrder(ctx context.Context, orderID int64) (*models.Order, error)
	FindOldestUnsupplied(ctx context.Context, orderID, productID int64) (*models.OrderedItem, error)
	MarkItemSupplied(ctx context.Context, itemID uint, at time.Time) error
	MarkAllSupplied(ctx context.Context, orderID int64, at time.Time) error
	CountItems(ctx context.Context, orderID int64) (total, supplied int64, err error)

	// CompleteIfIncoming sets completed_at only while the order is still
	// unresolved, and reports whether the update landed.
	CompleteIfIncoming(ctx context.Context, orderID int64, at time.Time) (bool, error)
	// SetResolution overwrites both resolution timestamps and reports
	// whether the order existed.
	SetResolution(ctx context.Context, orderID int64, canceledAt, completedAt *time.Time) (bool, error)

	ListIncoming(ctx context.Context) ([]models.Order, error)
	ListResolved(ctx context.Context) ([]models.Order, error)
	ListCanceled(ctx context.Context) ([]models.Order, error)
	ListCompleted(ctx context.Context) ([]models.Order, error)

	FindProductsByIDs(ctx context.Context, productIDs []int64) ([]models.Product, error)
	// CountUnitsByProduct counts ordered units of a product outside
	// canceled orders.
	CountUnitsByProduct(ctx context.Context, productID int64) (int64, error)
	DeleteOrderedItemsByProduct(ctx context.Context, productID int64) error
	DeleteProductRow(ctx context.Context, productID int64) (bool, error)
	DeleteAllOrders(ctx context.Context) error
}
