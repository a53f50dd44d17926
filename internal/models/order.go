package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	CustomerID uint        `gorm:"index;not null" json:"customer_id"`
	Customer   Customer    `json:"customer"`
	Status     OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Total      float64     `gorm:"not null" json:"total"`
	// Client-generated token; a resubmission with the same token returns the
	// original order instead of creating a duplicate.
	IdempotencyKey string      `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Payment        *Payment    `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"-"`
}

type OrderItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	OrderID   uint `gorm:"index;not null" json:"order_id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`
	// Unit price at time of purchase. A historical fact; never recomputed
	// from the live product row.
	Price     float64   `gorm:"not null" json:"price"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"created_at"`
}
