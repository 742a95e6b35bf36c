package repository

import (
	"context"
	"errors"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
)

// OrderRepository заказы и история статусов
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *entity.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// FindByID загружает заказ без связей
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDFull загружает заказ с историей и операциями
func (r *OrderRepository) FindByIDFull(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate блокирует строку заказа внутри транзакции
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*entity.Order, error) {
	var order entity.Order
	err := tx.WithContext(ctx).
		Raw(`SELECT * FROM orders WHERE id = ? FOR UPDATE`, id).
		Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, ErrNotFound
	}
	return &order, nil
}

type OrderListParams struct {
	Status   string
	Source   string
	Keyword  string
	Page     int
	PageSize int
}

// FindAll список заказов с фильтрами
func (r *OrderRepository) FindAll(ctx context.Context, params OrderListParams) ([]entity.Order, int64, error) {
	var items []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	err := query.
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	return items, total, err
}

// FindInProduction заказы в производстве, отсортированные для канбана:
// приоритетные вперёд, внутри приоритета — старые первыми.
func (r *OrderRepository) FindInProduction(ctx context.Context) ([]entity.Order, error) {
	var items []entity.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.OrderStatusInProduction).
		Order("priority DESC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *OrderRepository) Update(ctx context.Context, tx *gorm.DB, order *entity.Order) error {
	return tx.WithContext(ctx).Save(order).Error
}

// CreateHistory appends a status history entry. Never updated or deleted.
func (r *OrderRepository) CreateHistory(ctx context.Context, tx *gorm.DB, h *entity.OrderStatusHistory) error {
	return tx.WithContext(ctx).Create(h).Error
}

// FindHistory история статусов заказа, старые первыми
func (r *OrderRepository) FindHistory(ctx context.Context, orderID string) ([]entity.OrderStatusHistory, error) {
	var items []entity.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// NextSequence atomically increments and returns the per-(prefix, year)
// order counter. Одна строка на префиксогод, инкремент на стороне БД —
// конкурентные вызовы не могут прочитать одинаковое значение.
func (r *OrderRepository) NextSequence(ctx context.Context, tx *gorm.DB, prefix string, year int) (int, error) {
	var result struct{ LastNumber int }
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO order_sequences (prefix, year, last_number)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_number = order_sequences.last_number + 1
		RETURNING last_number
	`, prefix, year).Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return result.LastNumber, nil
}

// NumberExists проверка занятости номера (страхует timestamp-fallback)
func (r *OrderRepository) NumberExists(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&entity.Order{}).
		Where("order_number = ?", number).
		Count(&count).Error
	return count > 0, err
}
