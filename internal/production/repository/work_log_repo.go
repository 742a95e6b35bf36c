package repository

import (
	"context"
	"time"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"gorm.io/gorm"
)

// WorkLogRepository записи о выполненной работе
type WorkLogRepository struct {
	db *gorm.DB
}

func NewWorkLogRepository(db *gorm.DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

func (r *WorkLogRepository) Create(ctx context.Context, tx *gorm.DB, e *entity.WorkLogEntry) error {
	return tx.WithContext(ctx).Create(e).Error
}

type WorkLogListParams struct {
	OrderID    string
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

func (r *WorkLogRepository) FindAll(ctx context.Context, params WorkLogListParams) ([]entity.WorkLogEntry, int64, error) {
	var items []entity.WorkLogEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkLogEntry{})
	if params.OrderID != "" {
		query = query.Where("order_id = ?", params.OrderID)
	}
	if params.EmployeeID != "" {
		query = query.Where("employee_id = ?", params.EmployeeID)
	}
	if params.From != nil {
		query = query.Where("work_date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("work_date <= ?", *params.To)
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
		Order("work_date DESC, created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	return items, total, err
}

// SumByEmployeePeriod суммы по work_log за период — сверка материализованного
// агрегата payroll_records.
func (r *WorkLogRepository) SumByEmployeePeriod(ctx context.Context, employeeID, period string) (amount float64, minutes float64, count int64, err error) {
	var result struct {
		Amount  float64
		Minutes float64
		Count   int64
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0)           AS amount,
		       COALESCE(SUM(duration_minutes), 0) AS minutes,
		       COUNT(*)                            AS count
		FROM work_log_entries
		WHERE employee_id = ? AND to_char(work_date, 'YYYY-MM') = ?
	`, employeeID, period).Scan(&result).Error
	return result.Amount, result.Minutes, result.Count, err
}
