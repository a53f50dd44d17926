package models

import "time"

type Category struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Name     string     `gorm:"uniqueIndex;not null" json:"name"`
	ParentID *uint      `gorm:"index" json:"parent_id"` // nullable
	Parent   *Category  `json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"-"`
}

// Product is a catalog row. StockQuantity must never go negative; every
// write path decrements it with a conditional update, never read-then-write.
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Price         float64   `gorm:"not null" json:"price"`
	StockQuantity int       `gorm:"not null;default:0" json:"stock_quantity"`
	CategoryID    uint      `gorm:"index;not null" json:"category_id"`
	Category      Category  `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}
