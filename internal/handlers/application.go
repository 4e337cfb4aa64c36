package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/dto"
	apierrors "github.com/helpify/marketplace-api/internal/errors"
	"github.com/helpify/marketplace-api/internal/middleware"
	"github.com/helpify/marketplace-api/internal/services"
	"github.com/helpify/marketplace-api/internal/utils"
)

// ApplicationHandler coordinates application workflow HTTP handlers.
type ApplicationHandler struct {
	taskService *services.TaskService
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(taskService *services.TaskService) *ApplicationHandler {
	return &ApplicationHandler{
		taskService: taskService,
	}
}

// SubmitApplication posts a helper's bid on an open task.
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type SubmitApplicationRequest struct {
		Proposal  string  `json:"proposal"`
		BidAmount float64 `json:"bid_amount" binding:"required"`
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	app, err := h.taskService.SubmitApplication(services.SubmitApplicationInput{
		TaskID:    taskID,
		HelperID:  userID,
		Proposal:  req.Proposal,
		BidAmount: req.BidAmount,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToApplicationDTO(*app))
}

// ListMyApplications lists the authenticated helper's applications.
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	apps, total, err := h.taskService.ListHelperApplications(userID, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ApplicationListResponse{
		Applications: dto.ToApplicationDTOs(apps),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ReviewApplication lets the owning client accept or reject a pending
// application.
func (h *ApplicationHandler) ReviewApplication(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	applicationID, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid application ID")
		return
	}

	type ReviewRequest struct {
		Decision string `json:"decision" binding:"required"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	app, err := h.taskService.ReviewApplication(userID, applicationID, services.ReviewDecision(req.Decision))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToApplicationDTO(*app))
}
