package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// OperationHandler производственные операции
type OperationHandler struct {
	svc *service.OperationService
}

func NewOperationHandler(svc *service.OperationService) *OperationHandler {
	return &OperationHandler{svc: svc}
}

func (h *OperationHandler) Create(c *gin.Context) {
	var req service.CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	op, order, err := h.svc.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, gin.H{"operation": op, "order_status": order.Status})
}

func (h *OperationHandler) Complete(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	c.ShouldBindJSON(&req)
	op, err := h.svc.Complete(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, op)
}

func (h *OperationHandler) Update(c *gin.Context) {
	var req service.UpdateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	op, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, op)
}

func (h *OperationHandler) ListByOrder(c *gin.Context) {
	ops, err := h.svc.FindByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ops)
}
