package models

import "time"

// Order is one placed ticket. IDs are assigned by the order store's
// monotonic counter, never by the database.
type Order struct {
	OrderID     int64         `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	PlacedAt    time.Time     `gorm:"column:placed_at;not null"`
	CanceledAt  *time.Time    `gorm:"column:canceled_at"`
	CompletedAt *time.Time    `gorm:"column:completed_at"`
	Items       []OrderedItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
