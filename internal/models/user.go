package models

import "time"

// User is a sign-in identity. Both customer accounts and ERP staff
// authenticate against this table; staff additionally need a WorkerProfile
// row before the ERP gate lets them through.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	OIDCID       *string   `gorm:"uniqueIndex" json:"-"` // OpenID Connect subject, set for SSO accounts
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}
