package repository

import (
	"context"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialRepository потребности в материалах
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Upsert writes requirement rows keyed on (order_id, normalized_name).
// Повторный расчёт для того же заказа обновляет количества, не дублирует.
func (r *MaterialRepository) Upsert(ctx context.Context, reqs []entity.MaterialRequirement) error {
	if len(reqs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "normalized_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"material_name", "quantity", "unit", "unit_price", "updated_at",
		}),
	}).Create(&reqs).Error
}

// FindByOrder потребности заказа
func (r *MaterialRepository) FindByOrder(ctx context.Context, orderID string) ([]entity.MaterialRequirement, error) {
	var items []entity.MaterialRequirement
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("material_name ASC").
		Find(&items).Error
	return items, err
}
