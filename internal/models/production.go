package models

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskScheduled  TaskStatus = "scheduled"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskPaused     TaskStatus = "paused"
)

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskPending, TaskScheduled, TaskInProgress, TaskCompleted, TaskPaused:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type ProductionTask struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProductID uint       `gorm:"index;not null" json:"product_id"`
	Product   Product    `json:"product"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	// Units produced so far. Reaching Quantity completes the task.
	QuantityCompleted int        `gorm:"not null;default:0" json:"quantity_completed"`
	Status            TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority          Priority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	WorkerID          *uint      `gorm:"index" json:"worker_id"`
	Worker            *Worker    `json:"worker,omitempty"`
	DueDate           *time.Time `json:"due_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"-"`
}

// ProductionLog records a finished run. Written when a task completes,
// together with the stock increment for the produced quantity.
type ProductionLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProductID        uint      `gorm:"index;not null" json:"product_id"`
	WorkerID         *uint     `gorm:"index" json:"worker_id"`
	QuantityProduced int       `gorm:"not null" json:"quantity_produced"`
	QualityChecked   bool      `gorm:"default:false" json:"quality_checked"`
	CreatedAt        time.Time `json:"created_at"`
}
