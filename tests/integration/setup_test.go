package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// testApp holds the full application stack for integration tests. The sweep
// services are exposed directly so tests can trigger the background
// evaluations deterministically instead of waiting on the scheduler.
type testApp struct {
	DB            *gorm.DB
	Router        *gin.Engine
	BudgetAlerts  services.BudgetAlertServicer
	GoalReminders services.GoalReminderServicer
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Transaction{},
		&models.Budget{},
		&models.Goal{},
		&models.Holding{},
		&models.Notification{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	holdingService := services.NewHoldingService(db)
	notificationService := services.NewNotificationService(db)
	auditService := services.NewAuditService(db)
	budgetAlertService := services.NewBudgetAlertService(db, userService, notificationService)
	anomalyService := services.NewAnomalyService(db, userService, notificationService, 90)
	goalReminderService := services.NewGoalReminderService(db, userService, notificationService)
	insightsService := services.NewInsightsService(db, budgetAlertService, holdingService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, budgetAlertService, anomalyService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, budgetAlertService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	insightsHandler := handlers.NewInsightsHandler(insightsService)
	settingsHandler := handlers.NewSettingsHandler(userService, auditService)
	reportHandler := handlers.NewReportHandler(userService, transactionService, budgetService, goalService, holdingService, insightsService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.PUT("", budgetHandler.UpsertBudget)
	budgets.GET("", budgetHandler.GetMonthBudgets)
	budgets.GET("/status", budgetHandler.GetBudgetStatus)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.POST("/:id/add", goalHandler.AddAmount)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	portfolio := protected.Group("/portfolio")
	portfolio.POST("/holdings", holdingHandler.CreateHolding)
	portfolio.GET("/holdings", holdingHandler.GetUserHoldings)
	portfolio.GET("/holdings/:id", holdingHandler.GetHoldingByID)
	portfolio.PUT("/holdings/:id", holdingHandler.UpdateHolding)
	portfolio.DELETE("/holdings/:id", holdingHandler.DeleteHolding)
	portfolio.GET("/summary", holdingHandler.GetPortfolioSummary)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetUserNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	insights := protected.Group("/insights")
	insights.GET("/summary", insightsHandler.GetMonthSummary)
	insights.GET("/dashboard", insightsHandler.GetDashboard)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)
	settings.DELETE("/account", settingsHandler.DeleteAccount)

	reports := protected.Group("/reports")
	reports.GET("/transactions.csv", reportHandler.ExportTransactionsCSV)
	reports.GET("/monthly", reportHandler.GetMonthlyReport)

	return &testApp{
		DB:            db,
		Router:        router,
		BudgetAlerts:  budgetAlertService,
		GoalReminders: goalReminderService,
	}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}
