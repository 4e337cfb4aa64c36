package dto

import (
	"time"

	"github.com/helpify/marketplace-api/internal/models"
)

// NotificationDTO represents a notification feed entry
type NotificationDTO struct {
	ID        uint64                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Content   string                  `json:"content"`
	RelatedID uint64                  `json:"related_id"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

// NotificationsPagination carries feed counts alongside the page window
type NotificationsPagination struct {
	Total       int64 `json:"total"`
	UnreadCount int64 `json:"unread_count"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
}

// NotificationListResponse represents a page of the notification feed
type NotificationListResponse struct {
	Notifications []NotificationDTO       `json:"notifications"`
	Pagination    NotificationsPagination `json:"pagination"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Content:   n.Content,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationDTOs converts a slice of notifications
func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = ToNotificationDTO(n)
	}
	return dtos
}
