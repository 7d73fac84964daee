package models

import "time"

// OrderedItem is a single unit within a ticket. LineNo preserves the
// position the unit held in the cart when the order was placed.
type OrderedItem struct {
	ID         uint       `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    int64      `gorm:"column:order_id;not null;uniqueIndex:idx_ordered_items_order_line,priority:1"`
	LineNo     int        `gorm:"column:line_no;not null;uniqueIndex:idx_ordered_items_order_line,priority:2"`
	ProductID  int64      `gorm:"column:product_id;not null;index"`
	SuppliedAt *time.Time `gorm:"column:supplied_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Supplied reports whether this unit has been handed over.
func (i OrderedItem) Supplied() bool {
	return i.SuppliedAt != nil
}
