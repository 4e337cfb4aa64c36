package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// CanTransitionTo reports whether the task status machine allows moving
// from s to next. Transitions are monotonic; completed and cancelled are
// terminal.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusOpen:
		return next == TaskStatusInProgress || next == TaskStatusCancelled
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusCancelled
	default:
		return false
	}
}

type Task struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	ClientID      uint64         `gorm:"not null;index" json:"client_id"`
	Title         string         `gorm:"type:varchar(100);not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Location      string         `gorm:"type:varchar(200)" json:"location"`
	ScheduledTime time.Time      `gorm:"not null" json:"scheduled_time"`
	Budget        float64        `gorm:"type:decimal(8,2);not null" json:"budget"`
	Status        TaskStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client       User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Applications []Application `gorm:"foreignKey:TaskID" json:"applications,omitempty"`
}
