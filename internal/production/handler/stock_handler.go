package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
)

// StockHandler складские остатки. Нормализованное имя поддерживается на
// записи — матчинг закупки работает без ILIKE.
type StockHandler struct {
	repo *repository.StockRepository
}

func NewStockHandler(repo *repository.StockRepository) *StockHandler {
	return &StockHandler{repo: repo}
}

type stockItemRequest struct {
	Name      string  `json:"name" binding:"required"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Location  string  `json:"location"`
}

func (h *StockHandler) Create(c *gin.Context) {
	var req stockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	unit := req.Unit
	if unit == "" {
		unit = entity.UnitPiece
	}
	now := time.Now()
	item := &entity.StockItem{
		ID:             uuid.New().String(),
		Name:           req.Name,
		NormalizedName: service.NormalizeName(req.Name),
		Quantity:       req.Quantity,
		Unit:           unit,
		UnitPrice:      req.UnitPrice,
		Location:       req.Location,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		Error(c, err)
		return
	}
	Created(c, item)
}

func (h *StockHandler) Update(c *gin.Context) {
	item, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	var req stockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item.Name = req.Name
	item.NormalizedName = service.NormalizeName(req.Name)
	item.Quantity = req.Quantity
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	item.UnitPrice = req.UnitPrice
	item.Location = req.Location
	if err := h.repo.Update(c.Request.Context(), item); err != nil {
		Error(c, err)
		return
	}
	Success(c, item)
}

func (h *StockHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	items, total, err := h.repo.FindAll(c.Request.Context(), repository.StockListParams{
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, ListData{Items: items, Total: total, Page: page, PageSize: pageSize})
}
