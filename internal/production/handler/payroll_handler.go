package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// PayrollHandler выработка и зарплата
type PayrollHandler struct {
	svc          *service.PayrollService
	reportSvc    *service.ReportService
	employeeRepo *repository.EmployeeRepository
}

func NewPayrollHandler(svc *service.PayrollService, reportSvc *service.ReportService, employeeRepo *repository.EmployeeRepository) *PayrollHandler {
	return &PayrollHandler{svc: svc, reportSvc: reportSvc, employeeRepo: employeeRepo}
}

func (h *PayrollHandler) LogWork(c *gin.Context) {
	var req service.LogWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	entry, err := h.svc.LogWork(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, entry)
}

func (h *PayrollHandler) ListWorkLog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	params := repository.WorkLogListParams{
		OrderID:    c.Query("order_id"),
		EmployeeID: c.Query("employee_id"),
		Page:       page,
		PageSize:   pageSize,
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			params.To = &t
		}
	}
	items, total, err := h.svc.FindWorkLog(c.Request.Context(), params)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ListData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *PayrollHandler) ListPayroll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	params := repository.PayrollListParams{
		EmployeeID: c.Query("employee_id"),
		PeriodFrom: c.Query("period_from"),
		PeriodTo:   c.Query("period_to"),
		Department: c.Query("department"),
		Page:       page,
		PageSize:   pageSize,
	}
	if period := c.Query("period"); period != "" {
		params.PeriodFrom = period
		params.PeriodTo = period
	}
	items, total, err := h.svc.FindPayroll(c.Request.Context(), params)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ListData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// Reconcile сверка агрегата с work_log по сотруднику и периоду
func (h *PayrollHandler) Reconcile(c *gin.Context) {
	employeeID := c.Query("employee_id")
	period := c.Query("period")
	if employeeID == "" || period == "" {
		BadRequest(c, "employee_id and period are required")
		return
	}
	result, err := h.svc.Reconcile(c.Request.Context(), employeeID, period)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

// Report месячная ведомость в Excel
func (h *PayrollHandler) Report(c *gin.Context) {
	period := c.DefaultQuery("period", time.Now().Format("2006-01"))
	data, err := h.reportSvc.PayrollReport(c.Request.Context(), period)
	if err != nil {
		Error(c, err)
		return
	}
	filename := fmt.Sprintf("payroll-%s.xlsx", period)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *PayrollHandler) ListEmployees(c *gin.Context) {
	items, err := h.employeeRepo.FindAll(c.Request.Context(), c.Query("department"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, items)
}
