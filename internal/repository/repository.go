package repository

import (
	"time"

	"github.com/helpify/marketplace-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// RecordLogin stamps last_login for a user
	RecordLogin(id uint64, at time.Time) error

	// SetResetToken stores a password reset token and its expiry
	SetResetToken(id uint64, token string, expires time.Time) error

	// FindByResetToken finds a user holding an unexpired reset token
	FindByResetToken(token string, now time.Time) (*models.User, error)

	// UpdatePassword replaces the password hash and clears any reset token
	UpdatePassword(id uint64, passwordHash string) error
}

// AuthRepository defines the interface for login-attempt and
// remember-token data access
type AuthRepository interface {
	// RecordFailure inserts a failed attempt and returns the number of
	// failures for the email or IP within the window, atomically.
	RecordFailure(email, ip string, at time.Time, windowStart time.Time) (int64, error)

	// FailedAttemptsSince counts failures for the email or IP since the
	// given time
	FailedAttemptsSince(email, ip string, since time.Time) (int64, error)

	// ClearAttempts removes recorded failures for an email
	ClearAttempts(email string) error

	// CreateRememberToken persists a remember token
	CreateRememberToken(token *models.RememberToken) error

	// FindRememberToken finds an unexpired remember token
	FindRememberToken(token string, now time.Time) (*models.RememberToken, error)

	// DeleteRememberToken removes a single remember token
	DeleteRememberToken(token string) error

	// DeleteRememberTokensForUser removes all remember tokens for a user
	DeleteRememberTokensForUser(userID uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ClientID *uint64
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// ClientStats aggregates a client's dashboard numbers
type ClientStats struct {
	TasksByStatus       map[models.TaskStatus]int64
	OpenBudget          float64
	CompletedBudget     float64
	RecentHelpers       int64
	PendingApplications int64
	RecentTasks         []models.Task
	RecentApplications  []models.Application
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// UpdateStatusIf transitions a task's status only when it currently
	// holds the expected status; reports whether the transition applied.
	UpdateStatusIf(id uint64, from, to models.TaskStatus) (bool, error)

	// StatsForClient aggregates dashboard numbers for a client
	StatsForClient(clientID uint64, helperWindow time.Duration, recentLimit int) (*ClientStats, error)
}

// ApplicationRepository defines the interface for application data access
type ApplicationRepository interface {
	// Create creates a new application
	Create(app *models.Application) error

	// FindByID finds an application by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Application, error)

	// ExistsForTaskAndHelper reports whether the helper already applied
	ExistsForTaskAndHelper(taskID, helperID uint64) (bool, error)

	// ListByHelper lists a helper's applications, newest first
	ListByHelper(helperID uint64, page, pageSize int) ([]models.Application, int64, error)

	// Accept atomically accepts an application: the task moves from open
	// to in_progress, the application from pending to accepted, and with
	// autoReject every competing pending application is rejected. The
	// rejected competitors are returned.
	Accept(appID, taskID uint64, autoReject bool) ([]models.Application, error)

	// Reject moves a pending application to rejected; reports whether
	// the transition applied.
	Reject(appID uint64) (bool, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create appends a notification to a user's feed
	Create(n *models.Notification) error

	// ListByUser returns a bounded page of a user's notifications plus
	// the total and unread counts
	ListByUser(userID uint64, page, pageSize int) ([]models.Notification, int64, int64, error)

	// CountUnread returns the unread count for a user
	CountUnread(userID uint64) (int64, error)

	// MarkRead marks one of the user's notifications read
	MarkRead(id, userID uint64) error

	// MarkAllRead marks all of the user's notifications read
	MarkAllRead(userID uint64) error

	// Delete removes one of the user's notifications
	Delete(id, userID uint64) error
}
