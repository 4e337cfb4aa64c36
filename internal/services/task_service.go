package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/helpify/marketplace-api/internal/constants"
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrNotTaskOwner          = errors.New("only the task owner can perform this action")
	ErrPastSchedule          = errors.New("scheduled time must be in the future")
	ErrTaskNotOpen           = errors.New("task is no longer accepting applications")
	ErrDuplicateApplication  = errors.New("you already applied to this task")
	ErrSelfApplication       = errors.New("you cannot apply to your own task")
	ErrApplicationNotPending = errors.New("application has already been resolved")
	ErrInvalidTransition     = errors.New("task cannot move to the requested status")
	ErrInvalidDecision       = errors.New("decision must be accept or reject")
)

// ReviewDecision is the client's verdict on an application.
type ReviewDecision string

const (
	DecisionAccept ReviewDecision = "accept"
	DecisionReject ReviewDecision = "reject"
)

// TaskService handles the task and application lifecycle.
type TaskService struct {
	taskRepo         repository.TaskRepository
	applicationRepo  repository.ApplicationRepository
	notifications    *NotificationService
	acceptAutoReject bool
}

// NewTaskService creates a new TaskService. acceptAutoReject controls
// whether accepting one application rejects the task's other pending
// applications.
func NewTaskService(taskRepo repository.TaskRepository, applicationRepo repository.ApplicationRepository, notifications *NotificationService, acceptAutoReject bool) *TaskService {
	return &TaskService{
		taskRepo:         taskRepo,
		applicationRepo:  applicationRepo,
		notifications:    notifications,
		acceptAutoReject: acceptAutoReject,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	ClientID      uint64
	Title         string
	Description   string
	Location      string
	ScheduledTime time.Time
	Budget        float64
}

// CreateTask validates every field bound and persists an open task. All
// violations are reported together rather than one at a time.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	location := strings.TrimSpace(input.Location)

	verr := newValidationError()
	if len(title) < constants.MinTitleLength || len(title) > constants.MaxTitleLength {
		verr.add("title", fmt.Sprintf("title must be between %d and %d characters",
			constants.MinTitleLength, constants.MaxTitleLength))
	}
	if len(description) < constants.MinDescriptionLength || len(description) > constants.MaxDescriptionLength {
		verr.add("description", fmt.Sprintf("description must be between %d and %d characters",
			constants.MinDescriptionLength, constants.MaxDescriptionLength))
	}
	if len(location) > constants.MaxLocationLength {
		verr.add("location", fmt.Sprintf("location must be at most %d characters", constants.MaxLocationLength))
	}
	if input.Budget < constants.MinBudget || input.Budget > constants.MaxBudget {
		verr.add("budget", fmt.Sprintf("budget must be between %.2f and %.2f",
			constants.MinBudget, constants.MaxBudget))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if !input.ScheduledTime.After(time.Now()) {
		return nil, ErrPastSchedule
	}

	task := &models.Task{
		ClientID:      input.ClientID,
		Title:         title,
		Description:   description,
		Location:      location,
		ScheduledTime: input.ScheduledTime,
		Budget:        input.Budget,
		Status:        models.TaskStatusOpen,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task. The owning client also gets its applications.
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Client")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.ClientID == actorID {
		task, err = s.taskRepo.FindByID(taskID, "Client", "Applications", "Applications.Helper")
		if err != nil {
			return nil, fmt.Errorf("failed to load task applications: %w", err)
		}
	}

	return task, nil
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	ActorID  uint64
	Role     models.UserRole
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// ListTasks lists a client's own tasks, or the open tasks for a helper.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	if input.Role == models.RoleClient {
		filter.ClientID = &input.ActorID
	} else {
		open := models.TaskStatusOpen
		filter.Status = &open
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// SubmitApplicationInput represents a helper's bid on a task.
type SubmitApplicationInput struct {
	TaskID    uint64
	HelperID  uint64
	Proposal  string
	BidAmount float64
}

// SubmitApplication creates a pending application against an open task
// and notifies the task's client.
func (s *TaskService) SubmitApplication(input SubmitApplicationInput) (*models.Application, error) {
	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.Status != models.TaskStatusOpen {
		return nil, ErrTaskNotOpen
	}
	if task.ClientID == input.HelperID {
		return nil, ErrSelfApplication
	}

	exists, err := s.applicationRepo.ExistsForTaskAndHelper(input.TaskID, input.HelperID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if exists {
		return nil, ErrDuplicateApplication
	}

	app := &models.Application{
		TaskID:    input.TaskID,
		HelperID:  input.HelperID,
		Proposal:  strings.TrimSpace(input.Proposal),
		BidAmount: input.BidAmount,
		Status:    models.ApplicationStatusPending,
	}

	if err := s.applicationRepo.Create(app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	loaded, err := s.applicationRepo.FindByID(app.ID, "Helper")
	if err == nil {
		app = loaded
	}

	if err := s.notifications.NotifyApplicationSubmitted(task.ClientID, app.Helper.Fullname, task.Title, app.ID); err != nil {
		log.Printf("notification emit failed: %v", err)
	}

	return app, nil
}

// ListHelperApplications lists a helper's own applications.
func (s *TaskService) ListHelperApplications(helperID uint64, page, pageSize int) ([]models.Application, int64, error) {
	apps, total, err := s.applicationRepo.ListByHelper(helperID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}

// ReviewApplication resolves a pending application. Accepting moves the
// task to in_progress and, when the auto-reject policy is on, rejects the
// task's other pending applications. Rejecting touches only the one
// application.
func (s *TaskService) ReviewApplication(clientID, applicationID uint64, decision ReviewDecision) (*models.Application, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, ErrInvalidDecision
	}

	app, err := s.applicationRepo.FindByID(applicationID, "Task", "Helper")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}

	if app.Task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, ErrApplicationNotPending
	}

	if decision == DecisionReject {
		applied, err := s.applicationRepo.Reject(applicationID)
		if err != nil {
			return nil, fmt.Errorf("failed to reject application: %w", err)
		}
		if !applied {
			return nil, ErrApplicationNotPending
		}
		app.Status = models.ApplicationStatusRejected

		if err := s.notifications.NotifyApplicationRejected(app.HelperID, app.Task.Title, app.ID); err != nil {
			log.Printf("notification emit failed: %v", err)
		}

		return app, nil
	}

	rejected, err := s.applicationRepo.Accept(applicationID, app.TaskID, s.acceptAutoReject)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotOpen):
			return nil, ErrTaskNotOpen
		case errors.Is(err, repository.ErrApplicationNotPending):
			return nil, ErrApplicationNotPending
		default:
			return nil, fmt.Errorf("failed to accept application: %w", err)
		}
	}
	app.Status = models.ApplicationStatusAccepted
	app.Task.Status = models.TaskStatusInProgress

	if err := s.notifications.NotifyApplicationAccepted(app.HelperID, app.Task.Title, app.TaskID); err != nil {
		log.Printf("notification emit failed: %v", err)
	}
	for _, r := range rejected {
		if err := s.notifications.NotifyApplicationRejected(r.HelperID, app.Task.Title, r.ID); err != nil {
			log.Printf("notification emit failed: %v", err)
		}
	}

	return app, nil
}

// CancelTask cancels an open or in-progress task owned by the client.
func (s *TaskService) CancelTask(clientID, taskID uint64) (*models.Task, error) {
	return s.transitionTask(clientID, taskID, models.TaskStatusCancelled)
}

// CompleteTask marks an in-progress task owned by the client completed.
func (s *TaskService) CompleteTask(clientID, taskID uint64) (*models.Task, error) {
	return s.transitionTask(clientID, taskID, models.TaskStatusCompleted)
}

func (s *TaskService) transitionTask(clientID, taskID uint64, to models.TaskStatus) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Applications")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}
	if !task.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	applied, err := s.taskRepo.UpdateStatusIf(taskID, task.Status, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	if !applied {
		// Lost a race; the task moved under us.
		return nil, ErrInvalidTransition
	}
	task.Status = to

	for _, app := range task.Applications {
		if app.Status != models.ApplicationStatusAccepted {
			continue
		}
		if err := s.notifications.NotifyTaskStatusChanged(app.HelperID, task.Title, to, task.ID); err != nil {
			log.Printf("notification emit failed: %v", err)
		}
	}

	return task, nil
}

// DashboardStats aggregates a client's dashboard numbers. A client with
// no tasks gets zeroed aggregates, never an error.
func (s *TaskService) DashboardStats(clientID uint64) (*repository.ClientStats, error) {
	stats, err := s.taskRepo.StatsForClient(clientID, constants.RecentHelpersWindow, constants.RecentItemsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dashboard stats: %w", err)
	}
	return stats, nil
}
