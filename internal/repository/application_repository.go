package repository

import (
	"errors"

	"github.com/helpify/marketplace-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotOpen is returned when the accept transaction finds the task
	// no longer open.
	ErrTaskNotOpen = errors.New("application repository: task is not open")
	// ErrApplicationNotPending is returned when the accept transaction finds
	// the application already resolved.
	ErrApplicationNotPending = errors.New("application repository: application is not pending")
)

// GormApplicationRepository is a GORM implementation of ApplicationRepository
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// Create creates a new application
func (r *GormApplicationRepository) Create(app *models.Application) error {
	return r.db.Create(app).Error
}

// FindByID finds an application by ID with optional preloading
func (r *GormApplicationRepository) FindByID(id uint64, preload ...string) (*models.Application, error) {
	var app models.Application
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&app, id).Error; err != nil {
		return nil, err
	}

	return &app, nil
}

// ExistsForTaskAndHelper reports whether the helper already applied
func (r *GormApplicationRepository) ExistsForTaskAndHelper(taskID, helperID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("task_id = ? AND helper_id = ?", taskID, helperID).
		Count(&count).Error
	return count > 0, err
}

// ListByHelper lists a helper's applications, newest first
func (r *GormApplicationRepository) ListByHelper(helperID uint64, page, pageSize int) ([]models.Application, int64, error) {
	var apps []models.Application

	query := r.db.Model(&models.Application{}).Where("helper_id = ?", helperID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if page > 0 && pageSize > 0 {
		listQuery = listQuery.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	if err := listQuery.Preload("Task").Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// Accept atomically accepts an application. The guarded task UPDATE runs
// first: if the task already left open, the whole transaction rolls back
// and the racing winner keeps its result.
func (r *GormApplicationRepository) Accept(appID, taskID uint64, autoReject bool) ([]models.Application, error) {
	var rejected []models.Application

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", taskID, models.TaskStatusOpen).
			Update("status", models.TaskStatusInProgress)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotOpen
		}

		res = tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", appID, models.ApplicationStatusPending).
			Update("status", models.ApplicationStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrApplicationNotPending
		}

		if !autoReject {
			return nil
		}

		if err := tx.
			Where("task_id = ? AND id != ? AND status = ?", taskID, appID, models.ApplicationStatusPending).
			Find(&rejected).Error; err != nil {
			return err
		}
		if len(rejected) == 0 {
			return nil
		}

		return tx.Model(&models.Application{}).
			Where("task_id = ? AND id != ? AND status = ?", taskID, appID, models.ApplicationStatusPending).
			Update("status", models.ApplicationStatusRejected).Error
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}

// Reject moves a pending application to rejected
func (r *GormApplicationRepository) Reject(appID uint64) (bool, error) {
	res := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", appID, models.ApplicationStatusPending).
		Update("status", models.ApplicationStatusRejected)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
