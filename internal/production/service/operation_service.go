package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OperationService создаёт и ведёт производственные операции. Создание
// операции — единственный путь, которым производство двигает статус заказа.
type OperationService struct {
	orderRepo    *repository.OrderRepository
	opRepo       *repository.OperationRepository
	stateMachine *OrderStateMachine
	boardCache   *BoardCache
	db           *gorm.DB
	logger       *zap.Logger
}

func NewOperationService(
	orderRepo *repository.OrderRepository,
	opRepo *repository.OperationRepository,
	stateMachine *OrderStateMachine,
	boardCache *BoardCache,
	db *gorm.DB,
	logger *zap.Logger,
) *OperationService {
	return &OperationService{
		orderRepo:    orderRepo,
		opRepo:       opRepo,
		stateMachine: stateMachine,
		boardCache:   boardCache,
		db:           db,
		logger:       logger,
	}
}

type CreateOperationRequest struct {
	OrderID         string  `json:"order_id" binding:"required"`
	OperationType   string  `json:"operation_type" binding:"required"`
	ProductionStage string  `json:"production_stage"`
	AssigneeID      string  `json:"assignee_id"`
	UnitPrice       float64 `json:"unit_price"`
	TimeNormMinutes float64 `json:"time_norm_minutes"`
	Notes           string  `json:"notes"`
}

// Create validates the operation type against the order's current status,
// creates the operation already started, and drives the order transition.
// Операция, смена статуса и запись в историю — одна транзакция.
func (s *OperationService) Create(ctx context.Context, req CreateOperationRequest, actor string) (*entity.ProductionOperation, *entity.Order, error) {
	if req.ProductionStage != "" && !entity.IsValidStage(req.ProductionStage) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStage, req.ProductionStage)
	}

	var op *entity.ProductionOperation
	var order *entity.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(ctx, tx, req.OrderID)
		if err != nil {
			return fmt.Errorf("find order: %w", err)
		}

		if err := s.stateMachine.CheckOperation(req.OperationType, order.Status); err != nil {
			return err
		}

		// не больше одной активной produce-операции на заказ; частичный
		// уникальный индекс ловит гонку, проверка даёт внятную ошибку
		if req.OperationType == entity.OpTypeProduce {
			if _, err := s.opRepo.FindActiveProduce(ctx, order.ID); err == nil {
				return fmt.Errorf("%w: order %s already has an active produce operation", ErrConflict, order.OrderNumber)
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		now := time.Now()
		stage := req.ProductionStage
		if stage == "" && (req.OperationType == entity.OpTypeProduce || req.OperationType == entity.OpTypePurchaseAndProduce) {
			stage = entity.StageKB
		}

		// accept-шага у операций нет: создание означает запуск в работу
		op = &entity.ProductionOperation{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			OperationType:   req.OperationType,
			ProductionStage: stage,
			Status:          entity.OpStatusInProgress,
			AssigneeID:      req.AssigneeID,
			UnitPrice:       req.UnitPrice,
			TimeNormMinutes: req.TimeNormMinutes,
			Notes:           req.Notes,
			CreatedBy:       actor,
			StartDate:       &now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.opRepo.Create(ctx, tx, op); err != nil {
			// проигравший гонку упирается в частичный уникальный индекс
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: order %s already has an active produce operation", ErrConflict, order.OrderNumber)
			}
			return fmt.Errorf("create operation: %w", err)
		}

		// повторный produce на заказе, уже запущенном в производство,
		// статус не меняет
		target := entity.OperationResultStatus[req.OperationType]
		if order.Status == target {
			return nil
		}
		comment := fmt.Sprintf("Операция «%s» создана, заказ переведён в %s", req.OperationType, target)
		if err := s.stateMachine.Transition(ctx, tx, order, target, actor, comment); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.boardCache.Invalidate(ctx)
	s.logger.Info("production operation created",
		zap.String("operation_id", op.ID),
		zap.String("order_id", order.ID),
		zap.String("operation_type", op.OperationType),
		zap.String("order_status", order.Status),
		zap.String("actor", actor),
	)
	return op, order, nil
}

// Complete marks the operation done. Статус заказа не трогает: отгрузку
// решает канбан (перенос в «Отгружен»), готовность — явный перевод статуса.
func (s *OperationService) Complete(ctx context.Context, operationID, notes string) (*entity.ProductionOperation, error) {
	op, err := s.opRepo.FindByID(ctx, operationID)
	if err != nil {
		return nil, fmt.Errorf("find operation: %w", err)
	}
	if op.Status == entity.OpStatusCompleted {
		return op, nil
	}

	now := time.Now()
	op.Status = entity.OpStatusCompleted
	op.EndDate = &now
	if notes != "" {
		op.Notes = notes
	}
	if err := s.opRepo.Update(ctx, s.db, op); err != nil {
		return nil, fmt.Errorf("complete operation: %w", err)
	}

	s.boardCache.Invalidate(ctx)
	s.logger.Info("production operation completed",
		zap.String("operation_id", op.ID),
		zap.String("order_id", op.OrderID),
	)
	return op, nil
}

type UpdateOperationRequest struct {
	AssigneeID      *string  `json:"assignee_id"`
	UnitPrice       *float64 `json:"unit_price"`
	TimeNormMinutes *float64 `json:"time_norm_minutes"`
	Notes           *string  `json:"notes"`
}

// Update правка исполнителя/расценок/заметок без смены состояния
func (s *OperationService) Update(ctx context.Context, operationID string, req UpdateOperationRequest) (*entity.ProductionOperation, error) {
	op, err := s.opRepo.FindByID(ctx, operationID)
	if err != nil {
		return nil, fmt.Errorf("find operation: %w", err)
	}
	if req.AssigneeID != nil {
		op.AssigneeID = *req.AssigneeID
	}
	if req.UnitPrice != nil {
		op.UnitPrice = *req.UnitPrice
	}
	if req.TimeNormMinutes != nil {
		op.TimeNormMinutes = *req.TimeNormMinutes
	}
	if req.Notes != nil {
		op.Notes = *req.Notes
	}
	if err := s.opRepo.Update(ctx, s.db, op); err != nil {
		return nil, fmt.Errorf("update operation: %w", err)
	}
	return op, nil
}

// FindByOrder операции заказа
func (s *OperationService) FindByOrder(ctx context.Context, orderID string) ([]entity.ProductionOperation, error) {
	return s.opRepo.FindByOrder(ctx, orderID)
}
