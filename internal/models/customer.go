package models

import "time"

// Customer is a buyer record. Guests get a row keyed by email with
// Registered=false; once the same email orders while signed in, the row is
// linked to the user and marked registered.
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone      string    `json:"phone"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Registered bool      `gorm:"default:false" json:"registered"`
	CreatedAt  time.Time `json:"created_at"`
}
