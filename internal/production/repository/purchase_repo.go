package repository

import (
	"context"
	"errors"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
)

// PurchaseRepository списки закупки
type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create writes the list header together with its items. Вызывается только
// внутри транзакции сервиса.
func (r *PurchaseRepository) Create(ctx context.Context, tx *gorm.DB, list *entity.PurchaseList) error {
	return tx.WithContext(ctx).Create(list).Error
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*entity.PurchaseList, error) {
	var list entity.PurchaseList
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("material_name ASC")
		}).
		Where("id = ?", id).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

// FindByOrder список закупки заказа (максимум один)
func (r *PurchaseRepository) FindByOrder(ctx context.Context, orderID string) (*entity.PurchaseList, error) {
	var list entity.PurchaseList
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *PurchaseRepository) FindAll(ctx context.Context, page, pageSize int) ([]entity.PurchaseList, int64, error) {
	var items []entity.PurchaseList
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseList{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}
