package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultOrderPrefix префикс номеров заказов по умолчанию
const DefaultOrderPrefix = "SOF"

// OrderService приём заказов и явные переводы статуса
type OrderService struct {
	orderRepo    *repository.OrderRepository
	sequencer    *OrderNumberSequencer
	stateMachine *OrderStateMachine
	boardCache   *BoardCache
	prefix       string
	db           *gorm.DB
	logger       *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	sequencer *OrderNumberSequencer,
	stateMachine *OrderStateMachine,
	boardCache *BoardCache,
	prefix string,
	db *gorm.DB,
	logger *zap.Logger,
) *OrderService {
	if prefix == "" {
		prefix = DefaultOrderPrefix
	}
	return &OrderService{
		orderRepo:    orderRepo,
		sequencer:    sequencer,
		stateMachine: stateMachine,
		boardCache:   boardCache,
		prefix:       prefix,
		db:           db,
		logger:       logger,
	}
}

type CreateOrderRequest struct {
	CustomerName    string       `json:"customer_name" binding:"required"`
	CustomerPhone   string       `json:"customer_phone"`
	CustomerEmail   string       `json:"customer_email"`
	Priority        int          `json:"priority"`
	TotalAmount     float64      `json:"total_amount"`
	PaidAmount      float64      `json:"paid_amount"`
	DeliveryDate    string       `json:"delivery_date"` // YYYY-MM-DD
	DeliveryAddress string       `json:"delivery_address"`
	DeliveryNotes   string       `json:"delivery_notes"`
	Source          string       `json:"source"` // manual (default), calculator
	Config          entity.JSONB `json:"config"`
	Notes           string       `json:"notes"`
	Prefix          string       `json:"prefix"`
}

// Create assigns an order number and writes order + первая запись истории в
// одной транзакции. Заказы из калькулятора заходят черновиками и ждут
// проверки менеджером, остальные — сразу new.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest, actor string) (*entity.Order, error) {
	prefix := req.Prefix
	if prefix == "" {
		prefix = s.prefix
	}

	status := entity.OrderStatusNew
	if req.Source == "calculator" {
		status = entity.OrderStatusDraft
	}

	now := time.Now()
	order := &entity.Order{
		ID:              uuid.New().String(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Status:          status,
		Priority:        req.Priority,
		TotalAmount:     req.TotalAmount,
		PaidAmount:      req.PaidAmount,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryNotes:   req.DeliveryNotes,
		Source:          req.Source,
		Config:          req.Config,
		Notes:           req.Notes,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.Source == "" {
		order.Source = "manual"
	}
	if req.DeliveryDate != "" {
		t, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("parse delivery_date: %w", err)
		}
		order.DeliveryDate = &t
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.sequencer.Next(ctx, tx, prefix)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		history := &entity.OrderStatusHistory{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			Status:    order.Status,
			Comment:   "Заказ создан",
			ChangedBy: actor,
			CreatedAt: now,
		}
		return s.orderRepo.CreateHistory(ctx, tx, history)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status),
		zap.String("actor", actor),
	)
	return order, nil
}

// Get заказ с историей и операциями
func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.orderRepo.FindByIDFull(ctx, id)
}

// List список заказов
func (s *OrderService) List(ctx context.Context, params repository.OrderListParams) ([]entity.Order, int64, error) {
	return s.orderRepo.FindAll(ctx, params)
}

// History история статусов заказа
func (s *OrderService) History(ctx context.Context, orderID string) ([]entity.OrderStatusHistory, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.FindHistory(ctx, orderID)
}

// UpdateStatus explicit status change through the state machine (draft
// review, готовность, доставка, отмена менеджером).
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, target, comment, actor string) (*entity.Order, error) {
	var order *entity.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("find order: %w", err)
		}
		if comment == "" {
			comment = fmt.Sprintf("Статус изменён на %s", target)
		}
		return s.stateMachine.Transition(ctx, tx, order, target, actor, comment)
	})
	if err != nil {
		return nil, err
	}

	s.boardCache.Invalidate(ctx)
	return order, nil
}
