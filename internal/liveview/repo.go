package liveview

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const orderRowsQuery = `
SELECT o.order_id, i.line_no, i.product_id, p.name, p.filename, p.price,
       o.placed_at, o.canceled_at, o.completed_at, i.supplied_at
FROM orders o
JOIN ordered_items i ON i.order_id = o.order_id
JOIN products p ON p.product_id = i.product_id
WHERE %s
ORDER BY o.order_id ASC, i.product_id ASC, i.line_no ASC`

const boardRowsQuery = `
SELECT i.product_id, p.name, p.filename, o.order_id, o.placed_at
FROM ordered_items i
JOIN orders o ON o.order_id = i.order_id
JOIN products p ON p.product_id = i.product_id
WHERE i.supplied_at IS NULL
  AND o.canceled_at IS NULL
  AND o.completed_at IS NULL
ORDER BY i.product_id ASC, o.order_id ASC`

// boardRow is one unsupplied unit on the per-product kitchen board.
type boardRow struct {
	ProductID int64
	Name      string
	Filename  string
	OrderID   int64
	PlacedAt  time.Time
}

// Repository runs the read-side join queries behind the boards.
type Repository interface {
	IncomingRows(ctx context.Context) ([]orderRow, error)
	ResolvedRows(ctx context.Context) ([]orderRow, error)
	CanceledRows(ctx context.Context) ([]orderRow, error)
	CompletedRows(ctx context.Context) ([]orderRow, error)
	OneOrderRows(ctx context.Context, orderID int64) ([]orderRow, error)
	UnsuppliedRows(ctx context.Context) ([]boardRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a read-side repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) rows(ctx context.Context, cond string, args ...any) ([]orderRow, error) {
	var rows []orderRow
	query := fmt.Sprintf(orderRowsQuery, cond)
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) IncomingRows(ctx context.Context) ([]orderRow, error) {
	return r.rows(ctx, "o.canceled_at IS NULL AND o.completed_at IS NULL")
}

func (r *repository) ResolvedRows(ctx context.Context) ([]orderRow, error) {
	return r.rows(ctx, "o.canceled_at IS NOT NULL OR o.completed_at IS NOT NULL")
}

func (r *repository) CanceledRows(ctx context.Context) ([]orderRow, error) {
	return r.rows(ctx, "o.canceled_at IS NOT NULL")
}

func (r *repository) CompletedRows(ctx context.Context) ([]orderRow, error) {
	return r.rows(ctx, "o.completed_at IS NOT NULL")
}

func (r *repository) OneOrderRows(ctx context.Context, orderID int64) ([]orderRow, error) {
	return r.rows(ctx, "o.order_id = ?", orderID)
}

func (r *repository) UnsuppliedRows(ctx context.Context) ([]boardRow, error) {
	var rows []boardRow
	if err := r.db.WithContext(ctx).Raw(boardRowsQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
