package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/dto"
	apierrors "github.com/helpify/marketplace-api/internal/errors"
	"github.com/helpify/marketplace-api/internal/middleware"
	"github.com/helpify/marketplace-api/internal/services"
)

// DashboardHandler serves the client dashboard aggregation.
type DashboardHandler struct {
	taskService *services.TaskService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(taskService *services.TaskService) *DashboardHandler {
	return &DashboardHandler{
		taskService: taskService,
	}
}

// GetStats returns the authenticated client's dashboard aggregates.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stats, err := h.taskService.DashboardStats(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardStatsDTO(stats))
}
