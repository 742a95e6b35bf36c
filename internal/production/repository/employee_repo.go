package repository

import (
	"context"
	"errors"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
)

// EmployeeRepository сотрудники производства
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *entity.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*entity.Employee, error) {
	var e entity.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) FindAll(ctx context.Context, department string) ([]entity.Employee, error) {
	var items []entity.Employee
	query := r.db.WithContext(ctx).Where("status = ?", "active")
	if department != "" {
		query = query.Where("department = ?", department)
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}
