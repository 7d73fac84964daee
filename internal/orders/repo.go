package orders

import (
	"context"
	"time"

	"github.com/kioskworks/counter-backend/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) MaxOrderID(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(MAX(order_id), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateOrderedItems(ctx context.Context, items []models.OrderedItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOldestUnsupplied(ctx context.Context, orderID, productID int64) (*models.OrderedItem, error) {
	var item models.OrderedItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ? AND supplied_at IS NULL", orderID, productID).
		Order("line_no ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) MarkItemSupplied(ctx context.Context, itemID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderedItem{}).
		Where("id = ?", itemID).
		Update("supplied_at", at).Error
}

func (r *repository) MarkAllSupplied(ctx context.Context, orderID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderedItem{}).
		Where("order_id = ? AND supplied_at IS NULL", orderID).
		Update("supplied_at", at).Error
}

func (r *repository) CountItems(ctx context.Context, orderID int64) (int64, int64, error) {
	var total, supplied int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderedItem{}).
		Where("order_id = ?", orderID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.OrderedItem{}).
		Where("order_id = ? AND supplied_at IS NOT NULL", orderID).
		Count(&supplied).Error
	if err != nil {
		return 0, 0, err
	}
	return total, supplied, nil
}

func (r *repository) CompleteIfIncoming(ctx context.Context, orderID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND canceled_at IS NULL AND completed_at IS NULL", orderID).
		Update("completed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SetResolution(ctx context.Context, orderID int64, canceledAt, completedAt *time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"canceled_at":  canceledAt,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) listOrders(ctx context.Context, cond string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where(cond).
		Order("order_id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListIncoming(ctx context.Context) ([]models.Order, error) {
	return r.listOrders(ctx, "canceled_at IS NULL AND completed_at IS NULL")
}

func (r *repository) ListResolved(ctx context.Context) ([]models.Order, error) {
	return r.listOrders(ctx, "canceled_at IS NOT NULL OR completed_at IS NOT NULL")
}

func (r *repository) ListCanceled(ctx context.Context) ([]models.Order, error) {
	return r.listOrders(ctx, "canceled_at IS NOT NULL")
}

func (r *repository) ListCompleted(ctx context.Context) ([]models.Order, error) {
	return r.listOrders(ctx, "completed_at IS NOT NULL")
}

func (r *repository) FindProductsByIDs(ctx context.Context, productIDs []int64) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CountUnitsByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderedItem{}).
		Joins("JOIN orders ON orders.order_id = ordered_items.order_id").
		Where("ordered_items.product_id = ? AND orders.canceled_at IS NULL", productID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) DeleteOrderedItemsByProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.OrderedItem{}).Error
}

func (r *repository) DeleteProductRow(ctx context.Context, productID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteAllOrders(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.OrderedItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.Order{}).Error
}
