package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/jobs"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/scheduler"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	_ "fintrack/internal/docs" // Import swagger docs
)

// @title           FinTrack API
// @version         1.0
// @description     FinTrack is a personal finance application for tracking transactions, budgets, savings goals, and investments, with deduplicated budget, goal, and anomaly alerts.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	holdingService := services.NewHoldingService(db)
	notificationService := services.NewNotificationService(db)
	auditService := services.NewAuditService(db)
	budgetAlertService := services.NewBudgetAlertService(db, userService, notificationService)
	anomalyService := services.NewAnomalyService(db, userService, notificationService, appConfig.AnomalyWindowDays)
	goalReminderService := services.NewGoalReminderService(db, userService, notificationService)
	insightsService := services.NewInsightsService(db, budgetAlertService, holdingService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, budgetAlertService, anomalyService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, budgetAlertService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	insightsHandler := handlers.NewInsightsHandler(insightsService)
	settingsHandler := handlers.NewSettingsHandler(userService, auditService)
	reportHandler := handlers.NewReportHandler(userService, transactionService, budgetService, goalService, holdingService, insightsService)

	// Start the background sweeps
	sched := scheduler.New(log)
	if err := sched.AddJob(appConfig.BudgetSweepCron, jobs.NewBudgetAlertsJob(budgetAlertService)); err != nil {
		return fmt.Errorf("failed to register budget sweep: %w", err)
	}
	goalJob := jobs.NewGoalRemindersJob(goalReminderService)
	if err := sched.AddJob(appConfig.GoalSweepCron, goalJob); err != nil {
		return fmt.Errorf("failed to register goal sweep: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Catch up on deadlines that passed while the server was down.
	go func() {
		if err := sched.RunNow(goalJob); err != nil {
			log.Errorw("startup goal sweep failed", "error", err)
		}
	}()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile and session
	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.PUT("", budgetHandler.UpsertBudget)
	budgets.GET("", budgetHandler.GetMonthBudgets)
	budgets.GET("/status", budgetHandler.GetBudgetStatus)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.POST("/:id/add", goalHandler.AddAmount)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.POST("/holdings", holdingHandler.CreateHolding)
	portfolio.GET("/holdings", holdingHandler.GetUserHoldings)
	portfolio.GET("/holdings/:id", holdingHandler.GetHoldingByID)
	portfolio.PUT("/holdings/:id", holdingHandler.UpdateHolding)
	portfolio.DELETE("/holdings/:id", holdingHandler.DeleteHolding)
	portfolio.GET("/summary", holdingHandler.GetPortfolioSummary)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetUserNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	// Insights routes
	insights := protected.Group("/insights")
	insights.GET("/summary", insightsHandler.GetMonthSummary)
	insights.GET("/dashboard", insightsHandler.GetDashboard)

	// Settings routes
	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)
	settings.DELETE("/account", settingsHandler.DeleteAccount)

	// Report routes
	reports := protected.Group("/reports")
	reports.GET("/transactions.csv", reportHandler.ExportTransactionsCSV)
	reports.GET("/monthly", reportHandler.GetMonthlyReport)

	log.Infof("Starting FinTrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
