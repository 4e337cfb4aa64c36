package services

import (
	"fmt"

	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/repository"
)

// NotificationService owns the append-only notification feed. Domain
// flows call the Notify* emitters; the feed endpoints consume the CRUD
// side.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
	}
}

func (s *NotificationService) emit(userID uint64, nType models.NotificationType, content string, relatedID uint64) error {
	n := &models.Notification{
		UserID:    userID,
		Type:      nType,
		Content:   content,
		RelatedID: relatedID,
	}
	if err := s.notificationRepo.Create(n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// NotifyApplicationSubmitted tells a client a helper applied to their task.
func (s *NotificationService) NotifyApplicationSubmitted(clientID uint64, helperName, taskTitle string, applicationID uint64) error {
	content := fmt.Sprintf("%s applied to your task \"%s\"", helperName, taskTitle)
	return s.emit(clientID, models.NotificationTypeApplication, content, applicationID)
}

// NotifyApplicationAccepted tells a helper their bid was accepted.
func (s *NotificationService) NotifyApplicationAccepted(helperID uint64, taskTitle string, taskID uint64) error {
	content := fmt.Sprintf("Your application for \"%s\" was accepted", taskTitle)
	return s.emit(helperID, models.NotificationTypeTaskStatus, content, taskID)
}

// NotifyApplicationRejected tells a helper their bid was rejected.
func (s *NotificationService) NotifyApplicationRejected(helperID uint64, taskTitle string, applicationID uint64) error {
	content := fmt.Sprintf("Your application for \"%s\" was not selected", taskTitle)
	return s.emit(helperID, models.NotificationTypeApplication, content, applicationID)
}

// NotifyTaskStatusChanged tells a helper a task they are working on moved.
func (s *NotificationService) NotifyTaskStatusChanged(helperID uint64, taskTitle string, status models.TaskStatus, taskID uint64) error {
	content := fmt.Sprintf("Task \"%s\" is now %s", taskTitle, status)
	return s.emit(helperID, models.NotificationTypeTaskStatus, content, taskID)
}

// List returns a page of the user's feed with total and unread counts.
func (s *NotificationService) List(userID uint64, page, pageSize int) ([]models.Notification, int64, int64, error) {
	notifications, total, unread, err := s.notificationRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, unread, nil
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(userID uint64) (int64, error) {
	count, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read.
func (s *NotificationService) MarkRead(id, userID uint64) error {
	return s.notificationRepo.MarkRead(id, userID)
}

// MarkAllRead marks the user's whole feed read.
func (s *NotificationService) MarkAllRead(userID uint64) error {
	return s.notificationRepo.MarkAllRead(userID)
}

// Delete removes one notification from the user's feed.
func (s *NotificationService) Delete(id, userID uint64) error {
	return s.notificationRepo.Delete(id, userID)
}
