package models

import "time"

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment records a capture for an order. The unique order index enforces
// at most one payment per order; no split payments.
type Payment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	OrderID     uint          `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount      float64       `gorm:"not null" json:"amount"`
	Method      string        `gorm:"not null" json:"payment_method"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	ProcessedAt time.Time     `json:"processed_at"`
}
