package models

import "time"

type Supplier struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255;not null"`
	Phone     string `gorm:"size:30;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
