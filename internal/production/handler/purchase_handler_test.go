package handler

import (
	"net/http"
	"testing"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/testutil"
)

// seedConfiguredOrder заказ с конфигурацией: ткань 12.5 м, ППУ 8 кг, механизм
func seedConfiguredOrder(t *testing.T, env *testutil.TestEnv, id, number string) *entity.Order {
	t.Helper()
	order := testutil.SeedTestOrder(t, env.DB, id, number, "new")
	order.Source = "calculator"
	order.Config = entity.JSONB{
		"fabric_name":     "Ткань, 1 кат.",
		"fabric_quantity": 12.5,
		"fabric_price":    950.0,
		"foam_layers": []interface{}{
			map[string]interface{}{"brand": "ST-2536", "weight": 8.0, "price_per_kg": 320.0},
		},
		"mechanism_name": "Еврокнижка",
		"mechanism_cost": 3500.0,
	}
	if err := env.DB.Save(order).Error; err != nil {
		t.Fatalf("Failed to update order config: %v", err)
	}
	return order
}

func availabilityItems(t *testing.T, env *testutil.TestEnv, token, orderID string) (map[string]map[string]interface{}, map[string]interface{}) {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+orderID+"/availability", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("availability must return 200, got %d: %s", w.Code, w.Body.String())
	}
	data := respData(testutil.ParseResponse(w))
	items, _ := data["items"].([]interface{})
	byName := map[string]map[string]interface{}{}
	for _, it := range items {
		m := it.(map[string]interface{})
		byName[m["material_name"].(string)] = m
	}
	summary, _ := data["summary"].(map[string]interface{})
	return byName, summary
}

func TestCheckAvailabilityMatching(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedConfiguredOrder(t, env, "ord-pur-001", "SOF-2026-9301")

	// точное совпадение после нормализации: "ткань 1 кат"
	testutil.SeedTestStock(t, env.DB, "stk-001", "ткань 1 кат", "ткань 1 кат", "м", 20)
	// совпадение по первому слову: "ппу ..." против "ппу st2536"
	testutil.SeedTestStock(t, env.DB, "stk-002", "ППУ листовой 40мм", "ппу листовой 40мм", "кг", 3)

	byName, summary := availabilityItems(t, env, token, order.ID)

	fabric := byName["Ткань, 1 кат."]
	if fabric["match_type"] != "exact" {
		t.Errorf("fabric must match exactly, got %v", fabric["match_type"])
	}
	if fabric["missing_qty"] != 0.0 {
		t.Errorf("fabric is fully covered, got missing %v", fabric["missing_qty"])
	}

	foam := byName["ППУ ST-2536"]
	if foam["match_type"] != "first_word" {
		t.Errorf("foam must match by first word, got %v", foam["match_type"])
	}
	if foam["missing_qty"] != 5.0 {
		t.Errorf("foam missing must be 8-3=5, got %v", foam["missing_qty"])
	}

	mech := byName["Еврокнижка"]
	if mech["match_type"] != "none" {
		t.Errorf("mechanism has no stock, got %v", mech["match_type"])
	}
	if mech["missing_qty"] != 1.0 {
		t.Errorf("mechanism missing must be 1, got %v", mech["missing_qty"])
	}

	if summary["total_items"] != 3.0 || summary["missing_items"] != 2.0 {
		t.Errorf("unexpected summary: %v", summary)
	}
}

func TestCheckAvailabilityIsIdempotent(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedConfiguredOrder(t, env, "ord-pur-002", "SOF-2026-9302")

	availabilityItems(t, env, token, order.ID)
	availabilityItems(t, env, token, order.ID)

	// повторные проверки не плодят строк потребностей
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID+"/materials", nil, token)
	items, _ := testutil.ParseResponse(w)["data"].([]interface{})
	if len(items) != 3 {
		t.Errorf("expected 3 requirement rows after repeated checks, got %d", len(items))
	}
}

func TestCreatePurchaseListFromShortfall(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := seedConfiguredOrder(t, env, "ord-pur-003", "SOF-2026-9303")
	testutil.SeedTestStock(t, env.DB, "stk-003", "ткань 1 кат", "ткань 1 кат", "м", 20)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-lists", map[string]interface{}{
		"order_id": order.ID,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := respData(testutil.ParseResponse(w))
	// в список попадает только недостающее: ППУ и механизм, не ткань
	if data["items"] != 2.0 {
		t.Errorf("expected 2 shortfall items, got %v", data["items"])
	}
	// 8 кг * 320 + 1 * 3500
	if data["total_cost"] != 6060.0 {
		t.Errorf("expected total cost 6060, got %v", data["total_cost"])
	}

	// второй список на тот же заказ невозможен
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-lists", map[string]interface{}{
		"order_id": order.ID,
	}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("second purchase list must return 409, got %d", w.Code)
	}

	// список читается по заказу
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID+"/purchase-list", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := respData(testutil.ParseResponse(w))
	if list["total_cost"] != 6060.0 {
		t.Errorf("persisted total cost mismatch: %v", list["total_cost"])
	}
}

func TestGetPurchaseListNotFound(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	order := testutil.SeedTestOrder(t, env.DB, "ord-pur-004", "SOF-2026-9304", "new")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/orders/"+order.ID+"/purchase-list", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing list, got %d", w.Code)
	}
}
