package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for dashboard aggregation and listing
		{"tasks", "idx_tasks_client_status", "client_id, status"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Application indexes for review and stats windows
		{"applications", "idx_applications_task_status", "task_id, status"},
		{"applications", "idx_applications_helper_id", "helper_id"},
		{"applications", "idx_applications_created_at", "created_at"},

		// Login throttling window scan
		{"login_attempts", "idx_login_attempts_email_time", "email, attempted_at"},
		{"login_attempts", "idx_login_attempts_ip_time", "ip_address, attempted_at"},

		// Notification feed
		{"notifications", "idx_notifications_user_read", "user_id, is_read"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the postgres-only index migrations on top of
// AutoMigrate.
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
