package dto

import (
	"time"

	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64            `json:"id"`
	ClientID      uint64            `json:"client_id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Location      string            `json:"location"`
	ScheduledTime time.Time         `json:"scheduled_time"`
	Budget        float64           `json:"budget"`
	Status        models.TaskStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	Client        *UserDTO          `json:"client,omitempty"`
	Applications  []ApplicationDTO  `json:"applications,omitempty"`
}

// ApplicationDTO represents an application in API responses
type ApplicationDTO struct {
	ID        uint64                   `json:"id"`
	TaskID    uint64                   `json:"task_id"`
	HelperID  uint64                   `json:"helper_id"`
	Proposal  string                   `json:"proposal"`
	BidAmount float64                  `json:"bid_amount"`
	Status    models.ApplicationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	Helper    *UserDTO                 `json:"helper,omitempty"`
	Task      *TaskDTO                 `json:"task,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ApplicationListResponse represents a paginated list of applications
type ApplicationListResponse struct {
	Applications []ApplicationDTO         `json:"applications"`
	Pagination   utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:            task.ID,
		ClientID:      task.ClientID,
		Title:         task.Title,
		Description:   task.Description,
		Location:      task.Location,
		ScheduledTime: task.ScheduledTime,
		Budget:        task.Budget,
		Status:        task.Status,
		CreatedAt:     task.CreatedAt,
	}
	if task.Client.ID != 0 {
		client := ToUserDTO(task.Client)
		dto.Client = &client
	}
	for _, app := range task.Applications {
		dto.Applications = append(dto.Applications, ToApplicationDTO(app))
	}
	return dto
}

// ToApplicationDTO converts an Application model to ApplicationDTO
func ToApplicationDTO(app models.Application) ApplicationDTO {
	dto := ApplicationDTO{
		ID:        app.ID,
		TaskID:    app.TaskID,
		HelperID:  app.HelperID,
		Proposal:  app.Proposal,
		BidAmount: app.BidAmount,
		Status:    app.Status,
		CreatedAt: app.CreatedAt,
	}
	if app.Helper.ID != 0 {
		helper := ToUserDTO(app.Helper)
		dto.Helper = &helper
	}
	if app.Task.ID != 0 {
		task := ToTaskDTO(app.Task)
		dto.Task = &task
	}
	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToApplicationDTOs converts a slice of applications
func ToApplicationDTOs(apps []models.Application) []ApplicationDTO {
	dtos := make([]ApplicationDTO, len(apps))
	for i, app := range apps {
		dtos[i] = ToApplicationDTO(app)
	}
	return dtos
}
