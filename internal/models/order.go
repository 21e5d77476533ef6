package models

import "time"

// Order records outgoing inventory to a destination. Quantities are
// decremented at creation and reversed on edit/delete.
type Order struct {
	ID          uint   `gorm:"primaryKey"`
	Destination string `gorm:"size:255;not null"`
	UserID      uint   `gorm:"not null"`
	User        User
	Date        time.Time         `gorm:"index;not null"`
	Status      TransactionStatus `gorm:"size:20;not null"`
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
