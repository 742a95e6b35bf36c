package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// OrderHandler заказы
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := repository.OrderListParams{
		Status:   c.Query("status"),
		Source:   c.Query("source"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	}
	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ListData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *OrderHandler) History(c *gin.Context) {
	items, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, items)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status  string `json:"status" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Comment, actor(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}
