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

// OrderStateMachine owns Order.Status. Все смены статуса — и явные, и
// производные (создание операции, отгрузка с канбана) — проходят через
// Transition: проверка по таблице переходов и запись в историю неразделимы.
type OrderStateMachine struct {
	orderRepo *repository.OrderRepository
	logger    *zap.Logger
}

func NewOrderStateMachine(orderRepo *repository.OrderRepository, logger *zap.Logger) *OrderStateMachine {
	return &OrderStateMachine{orderRepo: orderRepo, logger: logger}
}

// CanTransition reports whether target is reachable from current.
func (m *OrderStateMachine) CanTransition(current, target string) bool {
	for _, s := range entity.ValidStatusTransitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// CheckOperation validates an operation type against the order's current
// status per the allowed-transition table.
func (m *OrderStateMachine) CheckOperation(opType, currentStatus string) error {
	allowed, ok := entity.ValidOperationStatuses[opType]
	if !ok {
		return fmt.Errorf("%w: unknown operation type %q", ErrOperationNotAllowed, opType)
	}
	for _, s := range allowed {
		if s == currentStatus {
			return nil
		}
	}
	return fmt.Errorf("%w: %s in status %s", ErrOperationNotAllowed, opType, currentStatus)
}

// Transition moves the order to target and appends a history entry. Обе
// записи идут в переданной транзакции: либо обе фиксируются, либо ни одной.
func (m *OrderStateMachine) Transition(ctx context.Context, tx *gorm.DB, order *entity.Order, target, actor, comment string) error {
	if !m.CanTransition(order.Status, target) {
		m.logger.Warn("order status transition rejected",
			zap.String("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.String("from", order.Status),
			zap.String("to", target),
			zap.String("actor", actor),
		)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	from := order.Status
	order.Status = target
	if err := m.orderRepo.Update(ctx, tx, order); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	history := &entity.OrderStatusHistory{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Status:    target,
		Comment:   comment,
		ChangedBy: actor,
		CreatedAt: time.Now(),
	}
	if err := m.orderRepo.CreateHistory(ctx, tx, history); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}

	m.logger.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("from", from),
		zap.String("to", target),
		zap.String("actor", actor),
	)
	return nil
}
