package models

import "time"

const (
	RoleAdmin            = "admin"
	RoleInventoryManager = "inventory_manager"
	RoleCustomerService  = "customer_service"
)

// WorkerProfile is the authorization lookup for the ERP console. A user
// without a row here is not staff, no matter what the client claims.
type WorkerProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Role      string    `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Worker is shop-floor personnel assignable to production tasks and
// support tickets. Distinct from WorkerProfile: workers need no login.
type Worker struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
