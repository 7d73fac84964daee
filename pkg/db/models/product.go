package models

import "time"

// Product is a menu entry on the counter's order screen. NoStock is an
// optional stock ceiling; null means unlimited. Enforcement is opt-in
// through the stock gate.
type Product struct {
	ProductID int64     `gorm:"column:product_id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Filename  string    `gorm:"column:filename;not null"`
	Price     int64     `gorm:"column:price;not null"`
	NoStock   *int64    `gorm:"column:no_stock"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
