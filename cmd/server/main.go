package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/config"
	"github.com/helpify/marketplace-api/internal/constants"
	"github.com/helpify/marketplace-api/internal/database"
	"github.com/helpify/marketplace-api/internal/handlers"
	"github.com/helpify/marketplace-api/internal/middleware"
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/repository"
	"github.com/helpify/marketplace-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if cfg.DBDriver == "postgres" {
		if err := database.MigrateDatabase(database.GetDB()); err != nil {
			log.Fatalf("Failed to run index migrations: %v", err)
		}
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewAuthRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, authRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	taskService := services.NewTaskService(taskRepo, applicationRepo, notificationService, cfg.AcceptAutoReject)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	applicationHandler := handlers.NewApplicationHandler(taskService)
	dashboardHandler := handlers.NewDashboardHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Resume sessions from remember-me cookies before anything else
	r.Use(middleware.SessionResume(authService))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Helpify API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.POST("/password-reset/request", authHandler.RequestPasswordReset)
			auth.POST("/password-reset/confirm", authHandler.ResetPassword)
		}

		// Everything below requires a session; mutations also need the
		// CSRF token issued at login.
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(), middleware.RequireCSRF())
		{
			tasks := protected.Group("/tasks")
			{
				tasks.GET("", taskHandler.ListTasks)
				tasks.GET("/:id", taskHandler.GetTask)
				tasks.POST("", middleware.RequireRole(models.RoleClient), taskHandler.CreateTask)
				tasks.POST("/:id/cancel", middleware.RequireRole(models.RoleClient), taskHandler.CancelTask)
				tasks.POST("/:id/complete", middleware.RequireRole(models.RoleClient), taskHandler.CompleteTask)
				tasks.POST("/:id/applications", middleware.RequireRole(models.RoleHelper), applicationHandler.SubmitApplication)
			}

			applications := protected.Group("/applications")
			{
				applications.GET("", middleware.RequireRole(models.RoleHelper), applicationHandler.ListMyApplications)
				applications.POST("/:id/review", middleware.RequireRole(models.RoleClient), applicationHandler.ReviewApplication)
			}

			protected.GET("/dashboard/stats", middleware.RequireRole(models.RoleClient), dashboardHandler.GetStats)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.GET("/unread-count", notificationHandler.UnreadCount)
				notifications.POST("/:id/read", notificationHandler.MarkRead)
				notifications.POST("/read-all", notificationHandler.MarkAllRead)
				notifications.DELETE("/:id", notificationHandler.Delete)
			}
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
