package dto

import (
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/repository"
)

// DashboardStatsDTO aggregates a client's dashboard numbers
type DashboardStatsDTO struct {
	OpenTasks           int64            `json:"open_tasks"`
	InProgressTasks     int64            `json:"in_progress_tasks"`
	CompletedTasks      int64            `json:"completed_tasks"`
	CancelledTasks      int64            `json:"cancelled_tasks"`
	OpenBudget          float64          `json:"open_budget"`
	CompletedBudget     float64          `json:"completed_budget"`
	NewHelpersThisWeek  int64            `json:"new_helpers_this_week"`
	PendingApplications int64            `json:"pending_applications"`
	RecentTasks         []TaskDTO        `json:"recent_tasks"`
	RecentApplications  []ApplicationDTO `json:"recent_applications"`
}

// ToDashboardStatsDTO converts aggregated stats to the response shape.
// Missing statuses read as zero.
func ToDashboardStatsDTO(stats *repository.ClientStats) DashboardStatsDTO {
	return DashboardStatsDTO{
		OpenTasks:           stats.TasksByStatus[models.TaskStatusOpen],
		InProgressTasks:     stats.TasksByStatus[models.TaskStatusInProgress],
		CompletedTasks:      stats.TasksByStatus[models.TaskStatusCompleted],
		CancelledTasks:      stats.TasksByStatus[models.TaskStatusCancelled],
		OpenBudget:          stats.OpenBudget,
		CompletedBudget:     stats.CompletedBudget,
		NewHelpersThisWeek:  stats.RecentHelpers,
		PendingApplications: stats.PendingApplications,
		RecentTasks:         ToTaskDTOs(stats.RecentTasks),
		RecentApplications:  ToApplicationDTOs(stats.RecentApplications),
	}
}
