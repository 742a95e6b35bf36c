package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// PurchaseHandler доступность материалов и списки закупки
type PurchaseHandler struct {
	svc         *service.PurchaseService
	materialSvc *service.MaterialService
}

func NewPurchaseHandler(svc *service.PurchaseService, materialSvc *service.MaterialService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, materialSvc: materialSvc}
}

// CheckAvailability read-only отчёт, п. за пунктом + сводка
func (h *PurchaseHandler) CheckAvailability(c *gin.Context) {
	report, err := h.svc.CheckAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, report)
}

// Materials сохранённые потребности заказа
func (h *PurchaseHandler) Materials(c *gin.Context) {
	items, err := h.materialSvc.FindByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, items)
}

func (h *PurchaseHandler) CreateList(c *gin.Context) {
	var req service.CreatePurchaseListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	list, err := h.svc.CreateList(c.Request.Context(), req, actor(c))
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, gin.H{
		"id":         list.ID,
		"total_cost": list.TotalCost,
		"items":      len(list.Items),
	})
}

func (h *PurchaseHandler) GetByOrder(c *gin.Context) {
	list, err := h.svc.FindByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	items, total, err := h.svc.FindAll(c.Request.Context(), page, pageSize)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ListData{Items: items, Total: total, Page: page, PageSize: pageSize})
}
