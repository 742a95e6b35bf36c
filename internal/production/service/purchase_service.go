package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurchaseService сверяет потребности заказа со складом и формирует список
// закупки из недостающего.
type PurchaseService struct {
	materialSvc  *MaterialService
	stockRepo    *repository.StockRepository
	purchaseRepo *repository.PurchaseRepository
	db           *gorm.DB
	logger       *zap.Logger
}

func NewPurchaseService(
	materialSvc *MaterialService,
	stockRepo *repository.StockRepository,
	purchaseRepo *repository.PurchaseRepository,
	db *gorm.DB,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		materialSvc:  materialSvc,
		stockRepo:    stockRepo,
		purchaseRepo: purchaseRepo,
		db:           db,
		logger:       logger,
	}
}

// AvailabilityItem строка отчёта по одному материалу
type AvailabilityItem struct {
	MaterialName string  `json:"material_name"`
	RequiredQty  float64 `json:"required_qty"`
	AvailableQty float64 `json:"available_qty"`
	MissingQty   float64 `json:"missing_qty"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
	StockItemID  string  `json:"stock_item_id,omitempty"`
	StockName    string  `json:"stock_name,omitempty"`
	MatchType    string  `json:"match_type"` // exact, first_word, none
}

// AvailabilitySummary сводка по отчёту
type AvailabilitySummary struct {
	TotalItems       int     `json:"total_items"`
	AvailableItems   int     `json:"available_items"`
	MissingItems     int     `json:"missing_items"`
	PercentAvailable float64 `json:"percent_available"`
	ShortfallCost    float64 `json:"shortfall_cost"`
}

// AvailabilityReport отчёт о доступности материалов заказа
type AvailabilityReport struct {
	OrderID string              `json:"order_id"`
	Items   []AvailabilityItem  `json:"items"`
	Summary AvailabilitySummary `json:"summary"`
}

// matchStock ищет складскую позицию: сначала точное совпадение
// нормализованного имени, затем по первому слову.
func (s *PurchaseService) matchStock(ctx context.Context, normalized string) (*entity.StockItem, string) {
	if item, err := s.stockRepo.FindByNormalizedName(ctx, normalized); err == nil {
		return item, "exact"
	}
	if item, err := s.stockRepo.FindByFirstWord(ctx, normalized); err == nil {
		return item, "first_word"
	}
	return nil, "none"
}

// CheckAvailability resolves the order's requirements and diffs them against
// stock. Только чтение (не считая идемпотентного upsert потребностей) —
// безопасно дёргать повторно для живого статуса в UI.
func (s *PurchaseService) CheckAvailability(ctx context.Context, orderID string) (*AvailabilityReport, error) {
	reqs, err := s.materialSvc.Resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{OrderID: orderID, Items: make([]AvailabilityItem, 0, len(reqs))}
	for _, req := range reqs {
		item := AvailabilityItem{
			MaterialName: req.MaterialName,
			RequiredQty:  req.Quantity,
			Unit:         req.Unit,
			UnitPrice:    req.UnitPrice,
			MatchType:    "none",
		}
		if stock, match := s.matchStock(ctx, req.NormalizedName); stock != nil {
			item.AvailableQty = stock.Quantity
			item.StockItemID = stock.ID
			item.StockName = stock.Name
			item.MatchType = match
			if item.UnitPrice == 0 {
				item.UnitPrice = stock.UnitPrice
			}
		}
		item.MissingQty = req.Quantity - item.AvailableQty
		if item.MissingQty < 0 {
			item.MissingQty = 0
		}

		report.Summary.TotalItems++
		if item.MissingQty > 0 {
			report.Summary.MissingItems++
			report.Summary.ShortfallCost += item.MissingQty * item.UnitPrice
		} else {
			report.Summary.AvailableItems++
		}
		report.Items = append(report.Items, item)
	}
	if report.Summary.TotalItems > 0 {
		report.Summary.PercentAvailable = 100 * float64(report.Summary.AvailableItems) / float64(report.Summary.TotalItems)
	}
	return report, nil
}

type CreatePurchaseListRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Name    string `json:"name"`
	Notes   string `json:"notes"`
}

// CreateList persists the shortfall as a purchase list: only items with
// missing quantity, заголовок + строки + итог в одной транзакции. Второй
// список на заказ невозможен — проверка до записи и уникальный индекс на
// order_id против гонки.
func (s *PurchaseService) CreateList(ctx context.Context, req CreatePurchaseListRequest, actor string) (*entity.PurchaseList, error) {
	if _, err := s.purchaseRepo.FindByOrder(ctx, req.OrderID); err == nil {
		return nil, fmt.Errorf("%w: purchase list already exists for order %s", ErrConflict, req.OrderID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	report, err := s.CheckAvailability(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	name := req.Name
	if name == "" {
		name = "Закупка по заказу"
	}
	list := &entity.PurchaseList{
		ID:        uuid.New().String(),
		OrderID:   req.OrderID,
		Name:      name,
		Notes:     req.Notes,
		Status:    "draft",
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range report.Items {
		if item.MissingQty <= 0 {
			continue
		}
		total := item.MissingQty * item.UnitPrice
		list.Items = append(list.Items, entity.PurchaseListItem{
			ID:             uuid.New().String(),
			PurchaseListID: list.ID,
			MaterialName:   item.MaterialName,
			RequiredQty:    item.RequiredQty,
			AvailableQty:   item.AvailableQty,
			MissingQty:     item.MissingQty,
			Unit:           item.Unit,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     total,
			CreatedAt:      now,
		})
		list.TotalCost += total
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.purchaseRepo.Create(ctx, tx, list)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: purchase list already exists for order %s", ErrConflict, req.OrderID)
		}
		return nil, fmt.Errorf("create purchase list: %w", err)
	}

	s.logger.Info("purchase list created",
		zap.String("list_id", list.ID),
		zap.String("order_id", req.OrderID),
		zap.Int("items", len(list.Items)),
		zap.Float64("total_cost", list.TotalCost),
		zap.String("actor", actor),
	)
	return list, nil
}

// FindByOrder список закупки заказа
func (s *PurchaseService) FindByOrder(ctx context.Context, orderID string) (*entity.PurchaseList, error) {
	return s.purchaseRepo.FindByOrder(ctx, orderID)
}

// FindAll все списки закупки
func (s *PurchaseService) FindAll(ctx context.Context, page, pageSize int) ([]entity.PurchaseList, int64, error) {
	return s.purchaseRepo.FindAll(ctx, page, pageSize)
}

// isUniqueViolation detects a postgres duplicate-key error without pulling
// the driver error types through the service layer.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}
