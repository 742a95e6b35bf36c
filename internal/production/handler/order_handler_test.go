package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/testutil"
	"go.uber.org/zap"
)

// setupProductionTest wires the full stack (без redis — кэш доски просто
// выключен) and registers the production routes.
func setupProductionTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, nil, "", zap.NewNop())
	h := NewHandlers(services, repos)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	api.POST("/orders", h.Order.Create)
	api.GET("/orders", h.Order.List)
	api.GET("/orders/:id", h.Order.Get)
	api.GET("/orders/:id/history", h.Order.History)
	api.PUT("/orders/:id/status", h.Order.UpdateStatus)
	api.GET("/orders/:id/operations", h.Operation.ListByOrder)
	api.GET("/orders/:id/availability", h.Purchase.CheckAvailability)
	api.GET("/orders/:id/materials", h.Purchase.Materials)
	api.GET("/orders/:id/purchase-list", h.Purchase.GetByOrder)

	api.POST("/operations", h.Operation.Create)
	api.PUT("/operations/:id", h.Operation.Update)
	api.POST("/operations/:id/complete", h.Operation.Complete)

	api.GET("/kanban/board", h.Kanban.Board)
	api.PUT("/kanban/orders/:id/stage", h.Kanban.MoveStage)

	api.POST("/purchase-lists", h.Purchase.CreateList)
	api.GET("/purchase-lists", h.Purchase.List)

	api.POST("/work-log", h.Payroll.LogWork)
	api.GET("/work-log", h.Payroll.ListWorkLog)
	api.GET("/payroll", h.Payroll.ListPayroll)
	api.POST("/payroll/reconcile", h.Payroll.Reconcile)
	api.GET("/payroll/report", h.Payroll.Report)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func respData(resp map[string]interface{}) map[string]interface{} {
	data, _ := resp["data"].(map[string]interface{})
	return data
}

func TestCreateOrderAssignsSequentialNumbers(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	year := time.Now().Year()

	for i := 1; i <= 3; i++ {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
			"customer_name": "Иванов И.И.",
			"total_amount":  38000,
		}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		data := respData(testutil.ParseResponse(w))
		want := fmt.Sprintf("SOF-%d-%04d", year, i)
		if data["order_number"] != want {
			t.Errorf("expected order number %s, got %v", want, data["order_number"])
		}
		if data["status"] != "new" {
			t.Errorf("expected status new, got %v", data["status"])
		}
	}
}

func TestCreateOrderFromCalculatorStartsAsDraft(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_name": "Петрова А.С.",
		"source":        "calculator",
		"config": map[string]interface{}{
			"fabric_name":     "Велюр Monolith",
			"fabric_quantity": 11.0,
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := respData(testutil.ParseResponse(w))
	if data["status"] != "draft" {
		t.Errorf("calculator order must start as draft, got %v", data["status"])
	}
	orderID := data["id"].(string)

	// из draft в производство нельзя — сначала проверка менеджером
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "in_production"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("draft -> in_production must be rejected, got %d", w.Code)
	}

	// draft -> new после проверки
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "new", "comment": "Проверен менеджером"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("draft -> new must pass, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := testutil.SeedTestOrder(t, env.DB, "ord-st-001", "SOF-2026-9001", "new")

	for _, target := range []string{"ready", "shipped", "delivered", "draft"} {
		w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+order.ID+"/status",
			map[string]interface{}{"status": target}, token)
		if w.Code != http.StatusBadRequest {
			t.Errorf("new -> %s must return 400, got %d", target, w.Code)
		}
	}

	// заказ не изменился
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID, nil, token)
	data := respData(testutil.ParseResponse(w))
	if data["status"] != "new" {
		t.Errorf("order status must stay new, got %v", data["status"])
	}
}

func TestOrderHistoryAppendOnly(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_name": "Сидоров К.Н.",
	}, token)
	orderID := respData(testutil.ParseResponse(w))["id"].(string)

	testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "confirmed"}, token)
	testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "in_production"}, token)
	// отклонённый переход не должен оставить следа в истории
	testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "delivered"}, token)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+orderID+"/history", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items, _ := resp["data"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("expected 3 history entries (created, confirmed, in_production), got %d", len(items))
	}

	first := items[0].(map[string]interface{})
	if first["changed_by"] != "test-user-001" {
		t.Errorf("history must record the actor, got %v", first["changed_by"])
	}
}

func TestGetOrderNotFound(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/no-such-order", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	env := setupProductionTest(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}
