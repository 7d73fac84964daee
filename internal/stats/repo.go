package stats

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// serviceSample is one completed order's turnaround window.
type serviceSample struct {
	PlacedAt    time.Time
	CompletedAt time.Time
}

// exportRow is one line of the order-history CSV: every unit of every
// non-canceled order, product-annotated.
type exportRow struct {
	OrderID     int64
	PlacedAt    time.Time
	CompletedAt *time.Time
	Name        string
	Price       int64
}

const exportQuery = `
SELECT o.order_id, o.placed_at, o.completed_at, p.name, p.price
FROM orders o
JOIN ordered_items i ON i.order_id = o.order_id
JOIN products p ON p.product_id = i.product_id
WHERE o.canceled_at IS NULL
ORDER BY o.order_id ASC, i.line_no ASC`

// Repository reads the historical rows behind the statistics.
type Repository interface {
	RecentServiceSamples(ctx context.Context, limit int) ([]serviceSample, error)
	CountIncoming(ctx context.Context) (int64, error)
	ExportRows(ctx context.Context) ([]exportRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a statistics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecentServiceSamples(ctx context.Context, limit int) ([]serviceSample, error) {
	var samples []serviceSample
	query := r.db.WithContext(ctx).
		Table("orders").
		Select("placed_at, completed_at").
		Where("completed_at IS NOT NULL").
		Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *repository) CountIncoming(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("canceled_at IS NULL AND completed_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) ExportRows(ctx context.Context) ([]exportRow, error) {
	var rows []exportRow
	if err := r.db.WithContext(ctx).Raw(exportQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
