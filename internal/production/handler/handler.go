package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// Handlers production engine HTTP handler set
type Handlers struct {
	Order     *OrderHandler
	Operation *OperationHandler
	Kanban    *KanbanHandler
	Purchase  *PurchaseHandler
	Stock     *StockHandler
	Payroll   *PayrollHandler
}

// NewHandlers создаёт набор обработчиков
func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Order:     NewOrderHandler(svc.Order),
		Operation: NewOperationHandler(svc.Operation),
		Kanban:    NewKanbanHandler(svc.Kanban),
		Purchase:  NewPurchaseHandler(svc.Purchase, svc.Material),
		Stock:     NewStockHandler(repos.Stock),
		Payroll:   NewPayrollHandler(svc.Payroll, svc.Report, repos.Employee),
	}
}

// Response общий конверт ответа
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListData тело списочного ответа
type ListData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// BadRequest 400 с текстом ошибки валидации
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: message})
}

// Error maps engine errors onto HTTP statuses. Неопознанные ошибки уходят
// как 500 без деталей нижнего уровня.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Code: 40400, Message: err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOperationNotAllowed),
		errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, Response{Code: 40900, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Code: 50000, Message: "internal error"})
	}
}

// actor id текущего пользователя из JWT-контекста
func actor(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "system"
}
