package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock budget services ---

type mockBudgetService struct {
	upsertBudgetFn    func(userID, category, monthKey string, amount decimal.Decimal) (*models.Budget, error)
	getBudgetByIDFn   func(userID, budgetID string) (*models.Budget, error)
	getMonthBudgetsFn func(userID, monthKey string) ([]models.Budget, error)
	deleteBudgetFn    func(userID, budgetID string) error
}

func (m *mockBudgetService) UpsertBudget(userID, category, monthKey string, amount decimal.Decimal) (*models.Budget, error) {
	if m.upsertBudgetFn != nil {
		return m.upsertBudgetFn(userID, category, monthKey, amount)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetMonthBudgets(userID, monthKey string) ([]models.Budget, error) {
	if m.getMonthBudgetsFn != nil {
		return m.getMonthBudgetsFn(userID, monthKey)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

type mockBudgetAlertService struct {
	statusForMonthFn func(userID, monthKey string) ([]services.BudgetStatus, error)
	runForMonthFn    func(userID, monthKey string) error
	runSweepFn       func(now time.Time) error
}

func (m *mockBudgetAlertService) StatusForMonth(userID, monthKey string) ([]services.BudgetStatus, error) {
	if m.statusForMonthFn != nil {
		return m.statusForMonthFn(userID, monthKey)
	}
	return []services.BudgetStatus{}, nil
}

func (m *mockBudgetAlertService) RunForMonth(userID, monthKey string) error {
	if m.runForMonthFn != nil {
		return m.runForMonthFn(userID, monthKey)
	}
	return nil
}

func (m *mockBudgetAlertService) RunSweep(now time.Time) error {
	if m.runSweepFn != nil {
		return m.runSweepFn(now)
	}
	return nil
}

var _ services.BudgetAlertServicer = (*mockBudgetAlertService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.PUT("/budgets", handler.UpsertBudget)
	auth.GET("/budgets", handler.GetMonthBudgets)
	auth.GET("/budgets/status", handler.GetBudgetStatus)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

const testBudgetID = "01923456-7890-7abc-8def-00000000b001"

func TestBudgetHandler_UpsertBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			upsertBudgetFn: func(_, category, monthKey string, amount decimal.Decimal) (*models.Budget, error) {
				return &models.Budget{
					Base:     models.Base{ID: testBudgetID},
					Category: category,
					Month:    monthKey,
					Amount:   amount,
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets",
			`{"category":"Food","month":"2026-09","amount":"1000"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["category"] != "Food" {
			t.Errorf("expected Food, got %v", budget["category"])
		}
		if budget["month"] != "2026-09" {
			t.Errorf("expected 2026-09, got %v", budget["month"])
		}
	})

	t.Run("returns 400 on malformed month", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets",
			`{"category":"Food","month":"September","amount":"1000"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets", `{"month":"2026-09","amount":"1000"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockBudgetAlertService{}, &mockAuditService{})
		r := gin.New()
		r.PUT("/budgets", handler.UpsertBudget)

		rec := doRequest(r, "PUT", "/budgets",
			`{"category":"Food","month":"2026-09","amount":"1000"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetMonthBudgets(t *testing.T) {
	t.Run("returns 200 with budgets", func(t *testing.T) {
		svc := &mockBudgetService{
			getMonthBudgetsFn: func(_, monthKey string) ([]models.Budget, error) {
				return []models.Budget{
					{Category: "Food", Month: monthKey, Amount: decimal.NewFromInt(1000)},
					{Category: "Travel", Month: monthKey, Amount: decimal.NewFromInt(500)},
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets?month=2026-09", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budgets := result["budgets"].([]interface{})
		if len(budgets) != 2 {
			t.Errorf("expected 2 budgets, got %d", len(budgets))
		}
	})

	t.Run("defaults_to_current_month", func(t *testing.T) {
		var capturedMonth string
		svc := &mockBudgetService{
			getMonthBudgetsFn: func(_, monthKey string) ([]models.Budget, error) {
				capturedMonth = monthKey
				return []models.Budget{}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		doRequest(r, "GET", "/budgets", "")

		if capturedMonth != time.Now().UTC().Format("2006-01") {
			t.Errorf("expected current month, got %q", capturedMonth)
		}
	})

	t.Run("returns 400 on invalid month", func(t *testing.T) {
		svc := &mockBudgetService{
			getMonthBudgetsFn: func(_, _ string) ([]models.Budget, error) {
				return nil, apperrors.ErrInvalidMonth
			},
		}
		handler := NewBudgetHandler(svc, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets?month=nope", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_MONTH")
	})
}

func TestBudgetHandler_GetBudgetStatus(t *testing.T) {
	t.Run("returns 200 with statuses", func(t *testing.T) {
		svc := &mockBudgetAlertService{
			statusForMonthFn: func(_, monthKey string) ([]services.BudgetStatus, error) {
				return []services.BudgetStatus{
					{
						Budget:    models.Budget{Category: "Food", Month: monthKey, Amount: decimal.NewFromInt(1000)},
						Used:      decimal.NewFromInt(850),
						Remaining: decimal.NewFromInt(150),
						Percent:   85,
						State:     services.BudgetStateNear,
					},
				}, nil
			},
		}
		handler := NewBudgetHandler(&mockBudgetService{}, svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/status?month=2026-09", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		statuses := result["statuses"].([]interface{})
		if len(statuses) != 1 {
			t.Fatalf("expected 1 status, got %d", len(statuses))
		}
		status := statuses[0].(map[string]interface{})
		if status["state"] != "near" {
			t.Errorf("expected near state, got %v", status["state"])
		}
		if status["percent"].(float64) != 85 {
			t.Errorf("expected percent 85, got %v", status["percent"])
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["message"] != "Budget deleted successfully" {
			t.Errorf("unexpected message: %v", result["message"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			deleteBudgetFn: func(_, _ string) error {
				return apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})

	t.Run("returns 400 on malformed ID", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockBudgetAlertService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
