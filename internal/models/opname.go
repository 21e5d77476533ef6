package models

import "time"

// Opname is a physical stocktake session. Its items record the counted
// (real) stock and the difference against the recorded quantity at the
// time of counting. Opnames never mutate product quantities.
type Opname struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null"`
	User      User
	Date      time.Time `gorm:"index;not null"`
	Items     []OpnameItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OpnameItem struct {
	ID         uint `gorm:"primaryKey"`
	OpnameID   uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
	RealStock  int `gorm:"not null"` // counted physical stock
	Difference int `gorm:"not null"` // real - recorded at count time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
