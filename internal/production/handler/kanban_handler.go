package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// KanbanHandler производственная доска
type KanbanHandler struct {
	svc *service.KanbanService
}

func NewKanbanHandler(svc *service.KanbanService) *KanbanHandler {
	return &KanbanHandler{svc: svc}
}

func (h *KanbanHandler) Board(c *gin.Context) {
	columns, err := h.svc.Board(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"columns": columns})
}

func (h *KanbanHandler) MoveStage(c *gin.Context) {
	var req struct {
		Stage string `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.svc.MoveStage(c.Request.Context(), c.Param("id"), req.Stage, actor(c)); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}
