package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/dto"
	apierrors "github.com/helpify/marketplace-api/internal/errors"
	"github.com/helpify/marketplace-api/internal/middleware"
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/services"
	"github.com/helpify/marketplace-api/internal/utils"
)

// TaskHandler coordinates task lifecycle HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask posts a new task for the authenticated client.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title         string    `json:"title" binding:"required"`
		Description   string    `json:"description" binding:"required"`
		Location      string    `json:"location"`
		ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
		Budget        float64   `json:"budget" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ClientID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		ScheduledTime: req.ScheduledTime,
		Budget:        req.Budget,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks lists the client's own tasks, or open tasks for helpers.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		ActorID:  userID,
		Role:     role,
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a task; the owner also sees its applications.
func (h *TaskHandler) GetTask(c *gin.Context) {
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

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CancelTask cancels an open or in-progress task.
func (h *TaskHandler) CancelTask(c *gin.Context) {
	h.transitionTask(c, h.taskService.CancelTask)
}

// CompleteTask marks an in-progress task completed.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.transitionTask(c, h.taskService.CompleteTask)
}

func (h *TaskHandler) transitionTask(c *gin.Context, transition func(clientID, taskID uint64) (*models.Task, error)) {
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

	task, err := transition(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func parseIDParam(c *gin.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func respondTaskError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, "Validation failed", verr.Violations)
	case errors.Is(err, services.ErrPastSchedule):
		apierrors.ValidationFailed(c, err.Error(), map[string]string{
			"scheduled_time": "scheduled time must be in the future",
		})
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrApplicationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotOpen),
		errors.Is(err, services.ErrApplicationNotPending),
		errors.Is(err, services.ErrInvalidTransition):
		apierrors.RespondWithError(c, http.StatusConflict,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidState, err.Error()))
	case errors.Is(err, services.ErrDuplicateApplication),
		errors.Is(err, services.ErrSelfApplication):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidDecision):
		apierrors.BadRequest(c, err.Error())
	default:
		log.Printf("task handler: %v", err)
		apierrors.InternalError(c, "")
	}
}
