package models

import "time"

// Product carries the running on-hand quantity mutated by instock and
// order transactions. Stockout is the minimum quantity that must remain
// after an outgoing movement, Overstock the maximum allowed after an
// incoming one; nil means the bound is not enforced.
type Product struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null;unique"`
	Category      string `gorm:"size:50;not null"`
	PurchasePrice float64
	SalePrice     float64
	Quantity      int  `gorm:"not null;default:0"`
	Stockout      *int // minimum remaining stock
	Overstock     *int // maximum stock after intake
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
