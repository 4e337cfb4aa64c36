package repository

import (
	"time"

	"github.com/helpify/marketplace-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.ClientID != nil {
		query = query.Where("tasks.client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Client").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateStatusIf transitions a task's status only when it currently holds
// the expected status. The conditional UPDATE is what makes racing
// transitions on the same task resolve to exactly one winner.
func (r *GormTaskRepository) UpdateStatusIf(id uint64, from, to models.TaskStatus) (bool, error) {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// StatsForClient aggregates dashboard numbers for a client. Every
// aggregate tolerates zero rows.
func (r *GormTaskRepository) StatsForClient(clientID uint64, helperWindow time.Duration, recentLimit int) (*ClientStats, error) {
	stats := &ClientStats{
		TasksByStatus: make(map[models.TaskStatus]int64),
	}

	type statusCount struct {
		Status models.TaskStatus
		Count  int64
	}
	var counts []statusCount
	if err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("client_id = ?", clientID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.TasksByStatus[c.Status] = c.Count
	}

	if err := r.db.Model(&models.Task{}).
		Select("COALESCE(SUM(budget), 0)").
		Where("client_id = ? AND status = ?", clientID, models.TaskStatusOpen).
		Scan(&stats.OpenBudget).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.Task{}).
		Select("COALESCE(SUM(budget), 0)").
		Where("client_id = ? AND status = ?", clientID, models.TaskStatusCompleted).
		Scan(&stats.CompletedBudget).Error; err != nil {
		return nil, err
	}

	// Distinct helpers who applied to this client's tasks recently,
	// scoped to the client rather than platform-wide.
	since := time.Now().Add(-helperWindow)
	if err := r.db.Model(&models.Application{}).
		Joins("JOIN tasks ON tasks.id = applications.task_id").
		Where("tasks.client_id = ? AND applications.created_at > ?", clientID, since).
		Distinct("applications.helper_id").
		Count(&stats.RecentHelpers).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.Application{}).
		Joins("JOIN tasks ON tasks.id = applications.task_id").
		Where("tasks.client_id = ? AND applications.status = ?", clientID, models.ApplicationStatusPending).
		Count(&stats.PendingApplications).Error; err != nil {
		return nil, err
	}

	if err := r.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&stats.RecentTasks).Error; err != nil {
		return nil, err
	}

	if err := r.db.
		Joins("JOIN tasks ON tasks.id = applications.task_id").
		Where("tasks.client_id = ?", clientID).
		Order("applications.created_at DESC").
		Limit(recentLimit).
		Preload("Helper").
		Preload("Task").
		Find(&stats.RecentApplications).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
