package handler

import (
	"net/http"
	"testing"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/testutil"
)

func seedWorkContext(t *testing.T, env *testutil.TestEnv, token, orderID, number string) (opID string) {
	t.Helper()
	order := testutil.SeedTestOrder(t, env.DB, orderID, number, "new")
	_, data := createOperation(t, env, token, map[string]interface{}{
		"order_id":          order.ID,
		"operation_type":    "produce",
		"unit_price":        800,
		"time_norm_minutes": 120,
	})
	return data["operation"].(map[string]interface{})["id"].(string)
}

func TestLogWorkIncrementsPayroll(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	emp := testutil.SeedTestEmployee(t, env.DB, "emp-pay-001", "Кравцова Л.А.", "Швейный цех")
	opID := seedWorkContext(t, env, token, "ord-pay-001", "SOF-2026-9401")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
		"order_id":     "ord-pay-001",
		"operation_id": opID,
		"employee_id":  emp.ID,
		"quantity":     2,
		"work_date":    "2026-08-15",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	entry := respData(testutil.ParseResponse(w))
	if entry["amount"] != 1600.0 {
		t.Errorf("amount must be 2*800=1600, got %v", entry["amount"])
	}
	if entry["duration_minutes"] != 240.0 {
		t.Errorf("duration must be 120*2=240, got %v", entry["duration_minutes"])
	}

	// агрегат обновился в той же транзакции
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/payroll?employee_id="+emp.ID+"&period=2026-08", nil, token)
	items, _ := respData(testutil.ParseResponse(w))["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 payroll record, got %d", len(items))
	}
	rec := items[0].(map[string]interface{})
	if rec["total_amount"] != 1600.0 || rec["work_count"] != 1.0 || rec["total_hours"] != 4.0 {
		t.Errorf("unexpected payroll record: %v", rec)
	}

	// вторая запись добавляется к агрегату, не перезаписывает его
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
		"order_id":     "ord-pay-001",
		"operation_id": opID,
		"employee_id":  emp.ID,
		"quantity":     1,
		"work_date":    "2026-08-16",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("second entry must succeed, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/payroll?employee_id="+emp.ID+"&period=2026-08", nil, token)
	items, _ = respData(testutil.ParseResponse(w))["items"].([]interface{})
	rec = items[0].(map[string]interface{})
	if rec["total_amount"] != 2400.0 || rec["work_count"] != 2.0 || rec["total_hours"] != 6.0 {
		t.Errorf("aggregate must accumulate: %v", rec)
	}
}

func TestLogWorkSplitsPeriodsByWorkDate(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	emp := testutil.SeedTestEmployee(t, env.DB, "emp-pay-002", "Орлов Д.С.", "Столярный цех")
	opID := seedWorkContext(t, env, token, "ord-pay-002", "SOF-2026-9402")

	for _, date := range []string{"2026-07-31", "2026-08-01"} {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
			"order_id":     "ord-pay-002",
			"operation_id": opID,
			"employee_id":  emp.ID,
			"quantity":     1,
			"work_date":    date,
		}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("entry for %s must succeed, got %d", date, w.Code)
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/payroll?employee_id="+emp.ID+"&period_from=2026-07&period_to=2026-08", nil, token)
	items, _ := respData(testutil.ParseResponse(w))["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected a record per period, got %d", len(items))
	}
}

func TestReconcileConsistentAggregate(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	emp := testutil.SeedTestEmployee(t, env.DB, "emp-pay-003", "Беляев Н.И.", "Сборка и упаковка")
	opID := seedWorkContext(t, env, token, "ord-pay-003", "SOF-2026-9403")

	for i := 0; i < 3; i++ {
		testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
			"order_id":     "ord-pay-003",
			"operation_id": opID,
			"employee_id":  emp.ID,
			"quantity":     1,
			"work_date":    "2026-08-20",
		}, token)
	}

	w := testutil.DoRequest(env.Router, http.MethodPost,
		"/api/v1/payroll/reconcile?employee_id="+emp.ID+"&period=2026-08", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := respData(testutil.ParseResponse(w))
	if result["consistent"] != true {
		t.Errorf("aggregate must reconcile with work log: %v", result)
	}
	if result["computed_count"] != 3.0 {
		t.Errorf("expected 3 computed entries, got %v", result["computed_count"])
	}
}

func TestLogWorkValidatesReferences(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	emp := testutil.SeedTestEmployee(t, env.DB, "emp-pay-004", "Фомин Г.Г.", "Швейный цех")
	opID := seedWorkContext(t, env, token, "ord-pay-004", "SOF-2026-9404")

	// операция другого заказа
	testutil.SeedTestOrder(t, env.DB, "ord-pay-005", "SOF-2026-9405", "new")
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
		"order_id":     "ord-pay-005",
		"operation_id": opID,
		"employee_id":  emp.ID,
		"quantity":     1,
	}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("operation of another order must return 404, got %d", w.Code)
	}

	// несуществующий сотрудник
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
		"order_id":     "ord-pay-004",
		"operation_id": opID,
		"employee_id":  "no-such-employee",
		"quantity":     1,
	}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown employee must return 404, got %d", w.Code)
	}

	// нулевое количество отбрасывает binding
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
		"order_id":     "ord-pay-004",
		"operation_id": opID,
		"employee_id":  emp.ID,
		"quantity":     0,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero quantity must return 400, got %d", w.Code)
	}
}

func TestPayrollReportDownload(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()
	emp := testutil.SeedTestEmployee(t, env.DB, "emp-pay-006", "Громова Е.В.", "Швейный цех")
	opID := seedWorkContext(t, env, token, "ord-pay-006", "SOF-2026-9406")

	testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-log", map[string]interface{}{
		"order_id":     "ord-pay-006",
		"operation_id": opID,
		"employee_id":  emp.ID,
		"quantity":     2,
		"work_date":    "2026-08-10",
	}, token)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/payroll/report?period=2026-08", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("report body must not be empty")
	}
}
