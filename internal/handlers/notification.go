package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/dto"
	apierrors "github.com/helpify/marketplace-api/internal/errors"
	"github.com/helpify/marketplace-api/internal/middleware"
	"github.com/helpify/marketplace-api/internal/services"
	"github.com/helpify/marketplace-api/internal/utils"
	"gorm.io/gorm"
)

// NotificationHandler serves the notification feed consumer endpoints.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List returns a page of the user's notification feed.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	notifications, total, unread, err := h.notificationService.List(userID, params.Page, params.Limit)
	if err != nil {
		log.Printf("notification handler: %v", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: dto.ToNotificationDTOs(notifications),
		Pagination: dto.NotificationsPagination{
			Total:       total,
			UnreadCount: unread,
			Page:        params.Page,
			Limit:       params.Limit,
		},
	})
}

// UnreadCount returns the user's unread notification count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		log.Printf("notification handler: %v", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkRead marks one notification read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Notification not found")
			return
		}
		log.Printf("notification handler: %v", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// MarkAllRead marks the user's whole feed read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.notificationService.MarkAllRead(userID); err != nil {
		log.Printf("notification handler: %v", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read"})
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Notification not found")
			return
		}
		log.Printf("notification handler: %v", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
