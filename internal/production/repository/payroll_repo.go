package repository

import (
	"context"
	"errors"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayrollRepository месячные агрегаты зарплаты
type PayrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

// Increment additively upserts the (employee, period) record. Инкремент
// выполняется на стороне БД — конкурентные logWork не теряют обновлений.
func (r *PayrollRepository) Increment(ctx context.Context, tx *gorm.DB, rec *entity.PayrollRecord) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_id"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_amount": gorm.Expr("payroll_records.total_amount + EXCLUDED.total_amount"),
			"work_count":   gorm.Expr("payroll_records.work_count + EXCLUDED.work_count"),
			"total_hours":  gorm.Expr("payroll_records.total_hours + EXCLUDED.total_hours"),
			"updated_at":   gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(rec).Error
}

func (r *PayrollRepository) FindByEmployeePeriod(ctx context.Context, employeeID, period string) (*entity.PayrollRecord, error) {
	var rec entity.PayrollRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND period = ?", employeeID, period).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

type PayrollListParams struct {
	EmployeeID string
	PeriodFrom string // YYYY-MM включительно
	PeriodTo   string
	Department string
	Page       int
	PageSize   int
}

// FindAll payroll rows with filters; department фильтрует через employees.
func (r *PayrollRepository) FindAll(ctx context.Context, params PayrollListParams) ([]entity.PayrollRecord, int64, error) {
	var items []entity.PayrollRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PayrollRecord{})
	if params.EmployeeID != "" {
		query = query.Where("employee_id = ?", params.EmployeeID)
	}
	if params.PeriodFrom != "" {
		query = query.Where("period >= ?", params.PeriodFrom)
	}
	if params.PeriodTo != "" {
		query = query.Where("period <= ?", params.PeriodTo)
	}
	if params.Department != "" {
		query = query.Where(
			"employee_id IN (SELECT id FROM employees WHERE department = ?)",
			params.Department,
		)
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
		Order("period DESC, employee_id ASC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	return items, total, err
}

// FindByPeriod все агрегаты за месяц (для отчёта)
func (r *PayrollRepository) FindByPeriod(ctx context.Context, period string) ([]entity.PayrollRecord, error) {
	var items []entity.PayrollRecord
	err := r.db.WithContext(ctx).
		Where("period = ?", period).
		Order("employee_id ASC").
		Find(&items).Error
	return items, err
}
