package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/constants"
	"github.com/helpify/marketplace-api/internal/database"
	"github.com/helpify/marketplace-api/internal/dto"
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/repository"
	"github.com/helpify/marketplace-api/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite covers the task and application lifecycle handlers
type TaskHandlerTestSuite struct {
	suite.Suite
	db                  *gorm.DB
	taskService         *services.TaskService
	taskHandler         *TaskHandler
	applicationHandler  *ApplicationHandler
	dashboardHandler    *DashboardHandler
	notificationService *services.NotificationService
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Application{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.buildHandlers(true)

	gin.SetMode(gin.TestMode)
}

// buildHandlers wires services and handlers with the given accept policy
func (suite *TaskHandlerTestSuite) buildHandlers(acceptAutoReject bool) {
	taskRepo := repository.NewTaskRepository(suite.db)
	applicationRepo := repository.NewApplicationRepository(suite.db)
	notificationRepo := repository.NewNotificationRepository(suite.db)

	suite.notificationService = services.NewNotificationService(notificationRepo)
	suite.taskService = services.NewTaskService(taskRepo, applicationRepo, suite.notificationService, acceptAutoReject)
	suite.taskHandler = NewTaskHandler(suite.taskService)
	suite.applicationHandler = NewApplicationHandler(suite.taskService)
	suite.dashboardHandler = NewDashboardHandler(suite.taskService)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Fullname:     "Test " + string(role),
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(clientID uint64, title string) *models.Task {
	task := &models.Task{
		ClientID:      clientID,
		Title:         title,
		Description:   "A description long enough to pass validation.",
		Location:      "Springfield",
		ScheduledTime: time.Now().Add(48 * time.Hour),
		Budget:        50,
		Status:        models.TaskStatusOpen,
	}
	suite.db.Create(task)
	return task
}

func (suite *TaskHandlerTestSuite) createTestApplication(taskID, helperID uint64) *models.Application {
	app := &models.Application{
		TaskID:    taskID,
		HelperID:  helperID,
		Proposal:  "I can do this",
		BidAmount: 45,
		Status:    models.ApplicationStatusPending,
	}
	suite.db.Create(app)
	return app
}

// newRouter builds a router with the given identity injected, bypassing
// session and CSRF middleware which have their own tests
func (suite *TaskHandlerTestSuite) newRouter(userID uint64, role models.UserRole) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyUserRole, string(role))
	})

	r.GET("/api/tasks", suite.taskHandler.ListTasks)
	r.POST("/api/tasks", suite.taskHandler.CreateTask)
	r.GET("/api/tasks/:id", suite.taskHandler.GetTask)
	r.POST("/api/tasks/:id/cancel", suite.taskHandler.CancelTask)
	r.POST("/api/tasks/:id/complete", suite.taskHandler.CompleteTask)
	r.POST("/api/tasks/:id/applications", suite.applicationHandler.SubmitApplication)
	r.GET("/api/applications", suite.applicationHandler.ListMyApplications)
	r.POST("/api/applications/:id/review", suite.applicationHandler.ReviewApplication)
	r.GET("/api/dashboard/stats", suite.dashboardHandler.GetStats)

	return r
}

func (suite *TaskHandlerTestSuite) request(r *gin.Engine, method, url string, payload any) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validTaskPayload() map[string]any {
	return map[string]any{
		"title":          "Fix my sink",
		"description":    "The kitchen sink has been leaking for a week.",
		"location":       "12 Main St",
		"scheduled_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"budget":         50.0,
	}
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	r := suite.newRouter(client.ID, models.RoleClient)

	w := suite.request(r, http.MethodPost, "/api/tasks", validTaskPayload())

	suite.Equal(http.StatusCreated, w.Code)

	var task dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
	suite.Equal(models.TaskStatusOpen, task.Status)
	suite.Equal(client.ID, task.ClientID)
	suite.NotZero(task.ID)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_AggregatesAllViolations() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	r := suite.newRouter(client.ID, models.RoleClient)

	payload := validTaskPayload()
	payload["title"] = "Fix"     // too short
	payload["description"] = "Too short."
	payload["budget"] = 5.0      // below minimum

	w := suite.request(r, http.MethodPost, "/api/tasks", payload)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var response struct {
		Details map[string]string `json:"details"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Contains(response.Details, "title")
	suite.Contains(response.Details, "description")
	suite.Contains(response.Details, "budget")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_BudgetTooLow() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	r := suite.newRouter(client.ID, models.RoleClient)

	payload := validTaskPayload()
	payload["budget"] = 5.0

	w := suite.request(r, http.MethodPost, "/api/tasks", payload)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "budget")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_PastSchedule() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	r := suite.newRouter(client.ID, models.RoleClient)

	payload := validTaskPayload()
	payload["scheduled_time"] = time.Now().Add(-time.Hour).Format(time.RFC3339)

	w := suite.request(r, http.MethodPost, "/api/tasks", payload)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "scheduled_time")
}

func (suite *TaskHandlerTestSuite) TestSubmitApplication() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")

	r := suite.newRouter(helper.ID, models.RoleHelper)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/applications", task.ID), map[string]any{
		"proposal":   "I have my own mower",
		"bid_amount": 45.0,
	})

	suite.Equal(http.StatusCreated, w.Code)

	var app dto.ApplicationDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &app))
	suite.Equal(models.ApplicationStatusPending, app.Status)
	suite.Equal(helper.ID, app.HelperID)

	// The client is notified about the new application
	var notifications []models.Notification
	suite.db.Where("user_id = ?", client.ID).Find(&notifications)
	suite.Require().Len(notifications, 1)
	suite.Equal(models.NotificationTypeApplication, notifications[0].Type)
}

func (suite *TaskHandlerTestSuite) TestSubmitApplication_Duplicate() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")

	r := suite.newRouter(helper.ID, models.RoleHelper)
	payload := map[string]any{"proposal": "pick me", "bid_amount": 45.0}
	url := fmt.Sprintf("/api/tasks/%d/applications", task.ID)

	w := suite.request(r, http.MethodPost, url, payload)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.request(r, http.MethodPost, url, payload)
	suite.Equal(http.StatusConflict, w.Code)

	var count int64
	suite.db.Model(&models.Application{}).Where("task_id = ?", task.ID).Count(&count)
	suite.EqualValues(1, count)
}

func (suite *TaskHandlerTestSuite) TestSubmitApplication_OwnTask() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	task := suite.createTestTask(client.ID, "Mow the lawn please")

	r := suite.newRouter(client.ID, models.RoleHelper)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/applications", task.ID), map[string]any{
		"proposal":   "suspiciously cheap",
		"bid_amount": 45.0,
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "own task")
}

func (suite *TaskHandlerTestSuite) TestSubmitApplication_TaskNotOpen() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	suite.db.Model(task).Update("status", models.TaskStatusInProgress)

	r := suite.newRouter(helper.ID, models.RoleHelper)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/applications", task.ID), map[string]any{
		"proposal":   "too late",
		"bid_amount": 45.0,
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TaskHandlerTestSuite) TestReviewApplication_AcceptRejectsCompetitors() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helperA := suite.createTestUser("helper-a@example.com", models.RoleHelper)
	helperB := suite.createTestUser("helper-b@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	appA := suite.createTestApplication(task.ID, helperA.ID)
	appB := suite.createTestApplication(task.ID, helperB.ID)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", appA.ID), map[string]any{
		"decision": "accept",
	})

	suite.Equal(http.StatusOK, w.Code)

	var reloadedTask models.Task
	suite.db.First(&reloadedTask, task.ID)
	suite.Equal(models.TaskStatusInProgress, reloadedTask.Status)

	var reloadedA, reloadedB models.Application
	suite.db.First(&reloadedA, appA.ID)
	suite.db.First(&reloadedB, appB.ID)
	suite.Equal(models.ApplicationStatusAccepted, reloadedA.Status)
	suite.Equal(models.ApplicationStatusRejected, reloadedB.Status)

	// Both helpers hear about the outcome
	var countA, countB int64
	suite.db.Model(&models.Notification{}).Where("user_id = ?", helperA.ID).Count(&countA)
	suite.db.Model(&models.Notification{}).Where("user_id = ?", helperB.ID).Count(&countB)
	suite.EqualValues(1, countA)
	suite.EqualValues(1, countB)
}

func (suite *TaskHandlerTestSuite) TestReviewApplication_AcceptWithoutAutoReject() {
	suite.buildHandlers(false)

	client := suite.createTestUser("client@example.com", models.RoleClient)
	helperA := suite.createTestUser("helper-a@example.com", models.RoleHelper)
	helperB := suite.createTestUser("helper-b@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	appA := suite.createTestApplication(task.ID, helperA.ID)
	appB := suite.createTestApplication(task.ID, helperB.ID)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", appA.ID), map[string]any{
		"decision": "accept",
	})
	suite.Equal(http.StatusOK, w.Code)

	var reloadedB models.Application
	suite.db.First(&reloadedB, appB.ID)
	suite.Equal(models.ApplicationStatusPending, reloadedB.Status)

	// With the task no longer open, the competitor cannot be accepted.
	w = suite.request(r, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", appB.ID), map[string]any{
		"decision": "accept",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TaskHandlerTestSuite) TestReviewApplication_Reject() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	app := suite.createTestApplication(task.ID, helper.ID)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", app.ID), map[string]any{
		"decision": "reject",
	})

	suite.Equal(http.StatusOK, w.Code)

	// Rejecting leaves the task open
	var reloadedTask models.Task
	suite.db.First(&reloadedTask, task.ID)
	suite.Equal(models.TaskStatusOpen, reloadedTask.Status)

	var reloadedApp models.Application
	suite.db.First(&reloadedApp, app.ID)
	suite.Equal(models.ApplicationStatusRejected, reloadedApp.Status)
}

func (suite *TaskHandlerTestSuite) TestReviewApplication_NotOwner() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	other := suite.createTestUser("other@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	app := suite.createTestApplication(task.ID, helper.ID)

	r := suite.newRouter(other.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", app.ID), map[string]any{
		"decision": "accept",
	})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestReviewApplication_AlreadyResolved() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	app := suite.createTestApplication(task.ID, helper.ID)
	suite.db.Model(app).Update("status", models.ApplicationStatusRejected)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", app.ID), map[string]any{
		"decision": "accept",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCancelTask() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	task := suite.createTestTask(client.ID, "Mow the lawn please")

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/cancel", task.ID), nil)

	suite.Equal(http.StatusOK, w.Code)

	var reloaded models.Task
	suite.db.First(&reloaded, task.ID)
	suite.Equal(models.TaskStatusCancelled, reloaded.Status)
}

func (suite *TaskHandlerTestSuite) TestCompleteTask_RequiresInProgress() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	task := suite.createTestTask(client.ID, "Mow the lawn please")

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil)

	suite.Equal(http.StatusConflict, w.Code)

	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Update("status", models.TaskStatusInProgress)

	w = suite.request(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var reloaded models.Task
	suite.db.First(&reloaded, task.ID)
	suite.Equal(models.TaskStatusCompleted, reloaded.Status)
}

func (suite *TaskHandlerTestSuite) TestDashboardStats_EmptyClient() {
	client := suite.createTestUser("client@example.com", models.RoleClient)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodGet, "/api/dashboard/stats", nil)

	suite.Equal(http.StatusOK, w.Code)

	var stats dto.DashboardStatsDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	suite.Zero(stats.OpenTasks)
	suite.Zero(stats.PendingApplications)
	suite.Zero(stats.NewHelpersThisWeek)
	suite.Zero(stats.OpenBudget)
	suite.Empty(stats.RecentTasks)
}

func (suite *TaskHandlerTestSuite) TestDashboardStats_Aggregates() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	otherClient := suite.createTestUser("other@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)

	open := suite.createTestTask(client.ID, "Open task title")
	done := suite.createTestTask(client.ID, "Completed task title")
	suite.db.Model(done).Updates(map[string]any{"status": models.TaskStatusCompleted, "budget": 120.0})
	suite.createTestApplication(open.ID, helper.ID)

	// Another client's task must not leak into the stats
	foreign := suite.createTestTask(otherClient.ID, "Foreign task title")
	suite.createTestApplication(foreign.ID, helper.ID)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodGet, "/api/dashboard/stats", nil)

	suite.Equal(http.StatusOK, w.Code)

	var stats dto.DashboardStatsDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	suite.EqualValues(1, stats.OpenTasks)
	suite.EqualValues(1, stats.CompletedTasks)
	suite.EqualValues(50, stats.OpenBudget)
	suite.EqualValues(120, stats.CompletedBudget)
	suite.EqualValues(1, stats.PendingApplications)
	suite.EqualValues(1, stats.NewHelpersThisWeek)
	suite.Len(stats.RecentTasks, 2)
	suite.Len(stats.RecentApplications, 1)
}

// TestTaskLifecycleScenario walks the full post-apply-accept flow
func (suite *TaskHandlerTestSuite) TestTaskLifecycleScenario() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)

	clientRouter := suite.newRouter(client.ID, models.RoleClient)
	helperRouter := suite.newRouter(helper.ID, models.RoleHelper)

	payload := map[string]any{
		"title":          "Fix sink",
		"description":    "Sink leaks, fix it now.", // 24 chars, within bounds
		"location":       "12 Main St",
		"scheduled_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"budget":         50.0,
	}
	w := suite.request(clientRouter, http.MethodPost, "/api/tasks", payload)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var task dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
	suite.Equal(models.TaskStatusOpen, task.Status)

	w = suite.request(helperRouter, http.MethodPost, fmt.Sprintf("/api/tasks/%d/applications", task.ID), map[string]any{
		"proposal":   "Plumber with ten years on the job",
		"bid_amount": 45.0,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var app dto.ApplicationDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &app))
	suite.Equal(models.ApplicationStatusPending, app.Status)

	var count int64
	suite.db.Model(&models.Application{}).Where("task_id = ?", task.ID).Count(&count)
	suite.EqualValues(1, count)

	w = suite.request(clientRouter, http.MethodPost, fmt.Sprintf("/api/applications/%d/review", app.ID), map[string]any{
		"decision": "accept",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var reloadedApp models.Application
	suite.db.First(&reloadedApp, app.ID)
	suite.Equal(models.ApplicationStatusAccepted, reloadedApp.Status)

	var reloadedTask models.Task
	suite.db.First(&reloadedTask, task.ID)
	suite.Equal(models.TaskStatusInProgress, reloadedTask.Status)
}

func (suite *TaskHandlerTestSuite) TestGetTask_OwnerSeesApplications() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	task := suite.createTestTask(client.ID, "Mow the lawn please")
	suite.createTestApplication(task.ID, helper.ID)

	r := suite.newRouter(client.ID, models.RoleClient)
	w := suite.request(r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)

	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Len(response.Applications, 1)

	// A helper fetching the same task does not see the applications
	r = suite.newRouter(helper.ID, models.RoleHelper)
	w = suite.request(r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)

	suite.Equal(http.StatusOK, w.Code)
	var helperResponse dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &helperResponse))
	suite.Empty(helperResponse.Applications)
}

func (suite *TaskHandlerTestSuite) TestListTasks_HelperSeesOnlyOpen() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	helper := suite.createTestUser("helper@example.com", models.RoleHelper)
	suite.createTestTask(client.ID, "Open task title")
	closed := suite.createTestTask(client.ID, "Closed task title")
	suite.db.Model(closed).Update("status", models.TaskStatusCancelled)

	r := suite.newRouter(helper.ID, models.RoleHelper)
	w := suite.request(r, http.MethodGet, "/api/tasks", nil)

	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	suite.Equal(models.TaskStatusOpen, response.Tasks[0].Status)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
