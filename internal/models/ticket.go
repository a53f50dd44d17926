package models

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

type SupportTicket struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	CustomerID       uint         `gorm:"index;not null" json:"customer_id"`
	Customer         Customer     `json:"customer"`
	Issue            string       `gorm:"type:text;not null" json:"issue"`
	Status           TicketStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Priority         Priority     `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	AssignedWorkerID *uint        `gorm:"index" json:"assigned_worker_id"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"-"`
}

// CustomerInteraction is a free-form service log entry (call, email,
// complaint) recorded by customer service staff.
type CustomerInteraction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerID      uint      `gorm:"index;not null" json:"customer_id"`
	InteractionType string    `gorm:"not null" json:"interaction_type"`
	Notes           string    `gorm:"type:text" json:"notes"`
	Priority        Priority  `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	CreatedAt       time.Time `json:"created_at"`
}
