package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// KanbanService derives the production board from in-production orders and
// their active produce operation, and moves orders between stages.
type KanbanService struct {
	orderRepo    *repository.OrderRepository
	opRepo       *repository.OperationRepository
	stateMachine *OrderStateMachine
	boardCache   *BoardCache
	db           *gorm.DB
	logger       *zap.Logger
}

func NewKanbanService(
	orderRepo *repository.OrderRepository,
	opRepo *repository.OperationRepository,
	stateMachine *OrderStateMachine,
	boardCache *BoardCache,
	db *gorm.DB,
	logger *zap.Logger,
) *KanbanService {
	return &KanbanService{
		orderRepo:    orderRepo,
		opRepo:       opRepo,
		stateMachine: stateMachine,
		boardCache:   boardCache,
		db:           db,
		logger:       logger,
	}
}

// KanbanCard карточка заказа на доске
type KanbanCard struct {
	OrderID         string     `json:"order_id"`
	OrderNumber     string     `json:"order_number"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	TotalAmount     float64    `json:"total_amount"`
	PaidAmount      float64    `json:"paid_amount"`
	Priority        int        `json:"priority"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	DeliveryAddress string     `json:"delivery_address"`
	DeliveryNotes   string     `json:"delivery_notes"`
	StageIndex      int        `json:"stage_index"`
	OperationID     string     `json:"operation_id,omitempty"`
	AssigneeID      string     `json:"assignee_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// KanbanColumn колонка доски
type KanbanColumn struct {
	Stage string       `json:"stage"`
	Index int          `json:"index"`
	Cards []KanbanCard `json:"cards"`
}

// Board builds the seven fixed columns. Заказ без активной produce-операции
// попадает в первую колонку (КБ). Внутри колонки порядок задан запросом:
// приоритет по убыванию, затем старые первыми.
func (s *KanbanService) Board(ctx context.Context) ([]KanbanColumn, error) {
	var cached []KanbanColumn
	if s.boardCache.Get(ctx, &cached) {
		return cached, nil
	}

	orders, err := s.orderRepo.FindInProduction(ctx)
	if err != nil {
		return nil, fmt.Errorf("load in-production orders: %w", err)
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	activeOps, err := s.opRepo.FindActiveProduceForOrders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load active operations: %w", err)
	}

	columns := make([]KanbanColumn, len(entity.ProductionStages))
	for i, stage := range entity.ProductionStages {
		columns[i] = KanbanColumn{Stage: stage, Index: i, Cards: []KanbanCard{}}
	}

	for _, order := range orders {
		card := KanbanCard{
			OrderID:         order.ID,
			OrderNumber:     order.OrderNumber,
			CustomerName:    order.CustomerName,
			CustomerPhone:   order.CustomerPhone,
			TotalAmount:     order.TotalAmount,
			PaidAmount:      order.PaidAmount,
			Priority:        order.Priority,
			DeliveryDate:    order.DeliveryDate,
			DeliveryAddress: order.DeliveryAddress,
			DeliveryNotes:   order.DeliveryNotes,
			CreatedAt:       order.CreatedAt,
		}
		idx := 0
		if op, ok := activeOps[order.ID]; ok {
			idx = entity.StageIndex(op.ProductionStage)
			card.OperationID = op.ID
			card.AssigneeID = op.AssigneeID
		}
		card.StageIndex = idx
		columns[idx].Cards = append(columns[idx].Cards, card)
	}

	s.boardCache.Set(ctx, columns)
	return columns, nil
}

// MoveStage moves the order's active operation to a new stage in place.
// Перенос в «Отгружен» дополнительно переводит заказ в shipped — тем же
// Transition и в той же транзакции, что и запись этапа: нет состояния, где
// этап сменился, а статус нет (или наоборот).
func (s *KanbanService) MoveStage(ctx context.Context, orderID, newStage, actor string) error {
	if !entity.IsValidStage(newStage) {
		return fmt.Errorf("%w: %q", ErrInvalidStage, newStage)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("find order: %w", err)
		}

		op, err := s.opRepo.FindActiveProduce(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("order %s has no active produce operation: %w", order.OrderNumber, err)
			}
			return err
		}

		op.ProductionStage = newStage
		if err := s.opRepo.Update(ctx, tx, op); err != nil {
			return fmt.Errorf("move operation stage: %w", err)
		}

		if newStage == entity.StageShipped {
			comment := fmt.Sprintf("Заказ перемещён на этап «%s», автоматически отгружен", newStage)
			if err := s.stateMachine.Transition(ctx, tx, order, entity.OrderStatusShipped, actor, comment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.boardCache.Invalidate(ctx)
	s.logger.Info("order moved to stage",
		zap.String("order_id", orderID),
		zap.String("stage", newStage),
		zap.String("actor", actor),
	)
	return nil
}
