package models

import "time"

type NotificationType string

const (
	NotificationTypeApplication NotificationType = "application"
	NotificationTypeMessage     NotificationType = "message"
	NotificationTypeTaskStatus  NotificationType = "task_status"
	NotificationTypeReview      NotificationType = "review"
)

type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	RelatedID uint64           `json:"related_id"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
