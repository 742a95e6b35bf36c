package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
)

// StockRepository складские остатки
type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) Create(ctx context.Context, item *entity.StockItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *StockRepository) Update(ctx context.Context, item *entity.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *StockRepository) FindByID(ctx context.Context, id string) (*entity.StockItem, error) {
	var item entity.StockItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

type StockListParams struct {
	Keyword  string
	Page     int
	PageSize int
}

func (r *StockRepository) FindAll(ctx context.Context, params StockListParams) ([]entity.StockItem, int64, error) {
	var items []entity.StockItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockItem{})
	if params.Keyword != "" {
		query = query.Where("name ILIKE ?", "%"+params.Keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 50
	}
	err := query.
		Order("name ASC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	return items, total, err
}

// FindByNormalizedName exact match on the normalized column.
func (r *StockRepository) FindByNormalizedName(ctx context.Context, normalized string) (*entity.StockItem, error) {
	var item entity.StockItem
	err := r.db.WithContext(ctx).
		Where("normalized_name = ?", normalized).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByFirstWord fallback match on the first word of the normalized name.
// Берём позицию с наибольшим остатком, чтобы выбор был детерминированным.
func (r *StockRepository) FindByFirstWord(ctx context.Context, normalized string) (*entity.StockItem, error) {
	first := normalized
	if i := strings.IndexByte(normalized, ' '); i > 0 {
		first = normalized[:i]
	}
	if first == "" {
		return nil, ErrNotFound
	}
	var item entity.StockItem
	err := r.db.WithContext(ctx).
		Where("normalized_name = ? OR normalized_name LIKE ?", first, first+" %").
		Order("quantity DESC, name ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
