package models

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a helper's bid on a task. A helper can hold at most one
// application per task, enforced by the composite unique index.
type Application struct {
	ID        uint64            `gorm:"primarykey" json:"id"`
	TaskID    uint64            `gorm:"not null;uniqueIndex:idx_applications_task_helper" json:"task_id"`
	HelperID  uint64            `gorm:"not null;uniqueIndex:idx_applications_task_helper" json:"helper_id"`
	Proposal  string            `gorm:"type:text" json:"proposal"`
	BidAmount float64           `gorm:"type:decimal(8,2);not null" json:"bid_amount"`
	Status    ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Task   Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Helper User `gorm:"foreignKey:HelperID" json:"helper,omitempty"`
}
