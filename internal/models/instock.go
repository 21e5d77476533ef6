package models

import "time"

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
)

// Instock records incoming inventory from a supplier. Creating one
// increments the referenced product quantities; the items are the unit
// of edit/delete.
type Instock struct {
	ID         uint `gorm:"primaryKey"`
	SupplierID uint `gorm:"index;not null"`
	Supplier   Supplier
	UserID     uint `gorm:"not null"`
	User       User
	Date       time.Time         `gorm:"index;not null"`
	Status     TransactionStatus `gorm:"size:20;not null"`
	Items      []InstockItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type InstockItem struct {
	ID        uint `gorm:"primaryKey"`
	InstockID uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
