package repository

import (
	"context"
	"errors"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
)

// OperationRepository производственные операции
type OperationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

func (r *OperationRepository) Create(ctx context.Context, tx *gorm.DB, op *entity.ProductionOperation) error {
	return tx.WithContext(ctx).Create(op).Error
}

func (r *OperationRepository) FindByID(ctx context.Context, id string) (*entity.ProductionOperation, error) {
	var op entity.ProductionOperation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (r *OperationRepository) Update(ctx context.Context, tx *gorm.DB, op *entity.ProductionOperation) error {
	return tx.WithContext(ctx).Save(op).Error
}

// FindActiveProduce returns the single in-progress produce operation of an
// order, or ErrNotFound. Единственность гарантирует частичный уникальный
// индекс udx_active_produce_operation.
func (r *OperationRepository) FindActiveProduce(ctx context.Context, orderID string) (*entity.ProductionOperation, error) {
	var op entity.ProductionOperation
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ? AND operation_type = ?",
			orderID, entity.OpStatusInProgress, entity.OpTypeProduce).
		First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

// FindActiveProduceForOrders active produce operations for a set of orders,
// keyed by order id (канбан строится одним запросом, не N+1).
func (r *OperationRepository) FindActiveProduceForOrders(ctx context.Context, orderIDs []string) (map[string]entity.ProductionOperation, error) {
	result := make(map[string]entity.ProductionOperation, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}
	var ops []entity.ProductionOperation
	err := r.db.WithContext(ctx).
		Where("order_id IN ? AND status = ? AND operation_type = ?",
			orderIDs, entity.OpStatusInProgress, entity.OpTypeProduce).
		Find(&ops).Error
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		result[op.OrderID] = op
	}
	return result, nil
}

// FindByOrder все операции заказа
func (r *OperationRepository) FindByOrder(ctx context.Context, orderID string) ([]entity.ProductionOperation, error) {
	var ops []entity.ProductionOperation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&ops).Error
	return ops, err
}
