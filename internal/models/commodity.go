package models

import "time"

// Commodity is a listing on the market board.
type Commodity struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string `gorm:"size:64;not null;index"`
	Quantity   string `gorm:"size:32;not null"`
	Location   string `gorm:"size:64;index"`
	Price      int    `gorm:"not null"`
	PriceMin   int
	PriceMax   int
	Category   string `gorm:"size:16;default:other;index"`
	VendorName string `gorm:"size:64"`
	Seeded     bool   `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
