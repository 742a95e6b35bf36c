package handler

import (
	"net/http"
	"testing"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/testutil"
)

var stageOrder = []string{
	"КБ", "Столярный цех", "Формовка ППУ", "Швейный цех",
	"Сборка и упаковка", "Готов к отгрузке", "Отгружен",
}

func boardColumns(t *testing.T, env *testutil.TestEnv, token string) []interface{} {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/kanban/board", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("board must return 200, got %d: %s", w.Code, w.Body.String())
	}
	data := respData(testutil.ParseResponse(w))
	columns, _ := data["columns"].([]interface{})
	return columns
}

func cardsOf(col interface{}) []interface{} {
	cards, _ := col.(map[string]interface{})["cards"].([]interface{})
	return cards
}

func TestBoardHasSevenFixedColumns(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	columns := boardColumns(t, env, token)
	if len(columns) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(columns))
	}
	for i, col := range columns {
		m := col.(map[string]interface{})
		if m["stage"] != stageOrder[i] {
			t.Errorf("column %d: expected %q, got %v", i, stageOrder[i], m["stage"])
		}
		if len(cardsOf(col)) != 0 {
			t.Errorf("column %d must be empty", i)
		}
	}
}

func TestBoardPlacesOrdersByOperationStage(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	// заказ с активной операцией на этапе КБ
	orderA := testutil.SeedTestOrder(t, env.DB, "ord-kb-001", "SOF-2026-9201", "new")
	createOperation(t, env, token, map[string]interface{}{
		"order_id":       orderA.ID,
		"operation_type": "produce",
	})

	// заказ в производстве без активной produce-операции — тоже в КБ
	testutil.SeedTestOrder(t, env.DB, "ord-kb-002", "SOF-2026-9202", "in_production")

	// заказ вне производства на доску не попадает
	testutil.SeedTestOrder(t, env.DB, "ord-kb-003", "SOF-2026-9203", "confirmed")

	columns := boardColumns(t, env, token)
	if got := len(cardsOf(columns[0])); got != 2 {
		t.Fatalf("КБ column must hold 2 cards, got %d", got)
	}
	for i := 1; i < 7; i++ {
		if len(cardsOf(columns[i])) != 0 {
			t.Errorf("column %d must be empty", i)
		}
	}
}

func TestMoveStage(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := testutil.SeedTestOrder(t, env.DB, "ord-kb-004", "SOF-2026-9204", "new")
	createOperation(t, env, token, map[string]interface{}{
		"order_id":       order.ID,
		"operation_type": "produce",
	})

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/kanban/orders/"+order.ID+"/stage",
		map[string]interface{}{"stage": "Швейный цех"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("move must succeed, got %d: %s", w.Code, w.Body.String())
	}

	columns := boardColumns(t, env, token)
	if got := len(cardsOf(columns[3])); got != 1 {
		t.Errorf("Швейный цех must hold the card, got %d", got)
	}
	if got := len(cardsOf(columns[0])); got != 0 {
		t.Errorf("КБ must be empty after the move, got %d", got)
	}

	// статус заказа перенос между рабочими этапами не меняет
	wo := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID, nil, token)
	if status := respData(testutil.ParseResponse(wo))["status"]; status != "in_production" {
		t.Errorf("order must stay in_production, got %v", status)
	}
}

func TestMoveStageToShippedShipsOrder(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := testutil.SeedTestOrder(t, env.DB, "ord-kb-005", "SOF-2026-9205", "new")
	createOperation(t, env, token, map[string]interface{}{
		"order_id":       order.ID,
		"operation_type": "produce",
	})

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/kanban/orders/"+order.ID+"/stage",
		map[string]interface{}{"stage": "Отгружен"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("move to Отгружен must succeed, got %d: %s", w.Code, w.Body.String())
	}

	wo := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID, nil, token)
	if status := respData(testutil.ParseResponse(wo))["status"]; status != "shipped" {
		t.Errorf("order must be shipped, got %v", status)
	}

	// отгруженный заказ уходит с доски
	columns := boardColumns(t, env, token)
	for i, col := range columns {
		if len(cardsOf(col)) != 0 {
			t.Errorf("column %d must be empty after shipping", i)
		}
	}

	// в истории есть запись об автоматической отгрузке
	wh := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID+"/history", nil, token)
	items, _ := testutil.ParseResponse(wh)["data"].([]interface{})
	found := false
	for _, it := range items {
		if it.(map[string]interface{})["status"] == "shipped" {
			found = true
		}
	}
	if !found {
		t.Error("history must contain the shipped transition")
	}
}

func TestMoveStageUnknownStage(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := testutil.SeedTestOrder(t, env.DB, "ord-kb-006", "SOF-2026-9206", "new")
	createOperation(t, env, token, map[string]interface{}{
		"order_id":       order.ID,
		"operation_type": "produce",
	})

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/kanban/orders/"+order.ID+"/stage",
		map[string]interface{}{"stage": "Grinding"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown stage must return 400, got %d", w.Code)
	}
}

func TestMoveStageWithoutActiveOperation(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := testutil.SeedTestOrder(t, env.DB, "ord-kb-007", "SOF-2026-9207", "in_production")

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/kanban/orders/"+order.ID+"/stage",
		map[string]interface{}{"stage": "Швейный цех"}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("order without active produce operation must return 404, got %d", w.Code)
	}
}
