package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PayrollService пишет выработку и инкрементально ведёт месячные агрегаты.
// payroll_records — материализованный агрегат, не представление: каждая
// запись work_log добавляется к нему в той же транзакции, Reconcile сверяет
// его с суммами по work_log.
type PayrollService struct {
	orderRepo    *repository.OrderRepository
	opRepo       *repository.OperationRepository
	employeeRepo *repository.EmployeeRepository
	workLogRepo  *repository.WorkLogRepository
	payrollRepo  *repository.PayrollRepository
	db           *gorm.DB
	logger       *zap.Logger
	now          func() time.Time
}

func NewPayrollService(
	orderRepo *repository.OrderRepository,
	opRepo *repository.OperationRepository,
	employeeRepo *repository.EmployeeRepository,
	workLogRepo *repository.WorkLogRepository,
	payrollRepo *repository.PayrollRepository,
	db *gorm.DB,
	logger *zap.Logger,
) *PayrollService {
	return &PayrollService{
		orderRepo:    orderRepo,
		opRepo:       opRepo,
		employeeRepo: employeeRepo,
		workLogRepo:  workLogRepo,
		payrollRepo:  payrollRepo,
		db:           db,
		logger:       logger,
		now:          time.Now,
	}
}

type LogWorkRequest struct {
	OrderID     string     `json:"order_id" binding:"required"`
	OperationID string     `json:"operation_id" binding:"required"`
	EmployeeID  string     `json:"employee_id" binding:"required"`
	Quantity    float64    `json:"quantity" binding:"required,gt=0"`
	WorkDate    string     `json:"work_date"` // YYYY-MM-DD, default today
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Notes       string     `json:"notes"`
}

// ComputeDuration duration in minutes: фактическая, если заданы оба времени,
// иначе норматив операции × количество.
func ComputeDuration(start, end *time.Time, timeNormMinutes, quantity float64) (float64, error) {
	if start != nil && end != nil {
		minutes := end.Sub(*start).Minutes()
		if minutes < 0 {
			return 0, fmt.Errorf("%w: %s before %s", ErrInvalidTimeRange, end.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		return minutes, nil
	}
	return timeNormMinutes * quantity, nil
}

// LogWork validates the references, computes amount and duration, and writes
// the work entry plus the additive payroll upsert in one transaction.
func (s *PayrollService) LogWork(ctx context.Context, req LogWorkRequest) (*entity.WorkLogEntry, error) {
	if _, err := s.orderRepo.FindByID(ctx, req.OrderID); err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	op, err := s.opRepo.FindByID(ctx, req.OperationID)
	if err != nil {
		return nil, fmt.Errorf("find operation: %w", err)
	}
	if op.OrderID != req.OrderID {
		return nil, fmt.Errorf("%w: operation %s belongs to another order", repository.ErrNotFound, req.OperationID)
	}
	if _, err := s.employeeRepo.FindByID(ctx, req.EmployeeID); err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}

	duration, err := ComputeDuration(req.StartTime, req.EndTime, op.TimeNormMinutes, req.Quantity)
	if err != nil {
		return nil, err
	}
	amount := math.Round(req.Quantity*op.UnitPrice*100) / 100

	workDate := s.now()
	if req.WorkDate != "" {
		parsed, perr := time.Parse("2006-01-02", req.WorkDate)
		if perr != nil {
			return nil, fmt.Errorf("parse work_date: %w", perr)
		}
		workDate = parsed
	}

	now := s.now()
	workEntry := &entity.WorkLogEntry{
		ID:              uuid.New().String(),
		OrderID:         req.OrderID,
		OperationID:     req.OperationID,
		EmployeeID:      req.EmployeeID,
		Quantity:        req.Quantity,
		Amount:          amount,
		WorkDate:        workDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: duration,
		Notes:           req.Notes,
		CreatedAt:       now,
	}

	period := workDate.Format("2006-01")
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.workLogRepo.Create(ctx, tx, workEntry); err != nil {
			return fmt.Errorf("create work log entry: %w", err)
		}
		rec := &entity.PayrollRecord{
			ID:          uuid.New().String(),
			EmployeeID:  req.EmployeeID,
			Period:      period,
			TotalAmount: amount,
			WorkCount:   1,
			TotalHours:  duration / 60,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.payrollRepo.Increment(ctx, tx, rec); err != nil {
			return fmt.Errorf("increment payroll record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("work logged",
		zap.String("entry_id", workEntry.ID),
		zap.String("order_id", req.OrderID),
		zap.String("operation_id", req.OperationID),
		zap.String("employee_id", req.EmployeeID),
		zap.Float64("amount", amount),
		zap.Float64("duration_minutes", duration),
		zap.String("period", period),
	)
	return workEntry, nil
}

// FindWorkLog записи о работе с фильтрами
func (s *PayrollService) FindWorkLog(ctx context.Context, params repository.WorkLogListParams) ([]entity.WorkLogEntry, int64, error) {
	return s.workLogRepo.FindAll(ctx, params)
}

// FindPayroll payroll rows по фильтрам
func (s *PayrollService) FindPayroll(ctx context.Context, params repository.PayrollListParams) ([]entity.PayrollRecord, int64, error) {
	return s.payrollRepo.FindAll(ctx, params)
}

// ReconcileResult расхождение агрегата с суммами по work_log
type ReconcileResult struct {
	EmployeeID     string  `json:"employee_id"`
	Period         string  `json:"period"`
	RecordAmount   float64 `json:"record_amount"`
	ComputedAmount float64 `json:"computed_amount"`
	RecordHours    float64 `json:"record_hours"`
	ComputedHours  float64 `json:"computed_hours"`
	RecordCount    int     `json:"record_count"`
	ComputedCount  int64   `json:"computed_count"`
	Consistent     bool    `json:"consistent"`
}

// Reconcile recomputes the aggregate from work_log and compares. Инкремент
// склонен к тихому дрейфу, если какой-то путь записи обойдёт агрегатор —
// это проверка на такой случай, не путь восстановления.
func (s *PayrollService) Reconcile(ctx context.Context, employeeID, period string) (*ReconcileResult, error) {
	amount, minutes, count, err := s.workLogRepo.SumByEmployeePeriod(ctx, employeeID, period)
	if err != nil {
		return nil, fmt.Errorf("sum work log: %w", err)
	}

	result := &ReconcileResult{
		EmployeeID:     employeeID,
		Period:         period,
		ComputedAmount: amount,
		ComputedHours:  minutes / 60,
		ComputedCount:  count,
	}

	rec, err := s.payrollRepo.FindByEmployeePeriod(ctx, employeeID, period)
	if err == nil {
		result.RecordAmount = rec.TotalAmount
		result.RecordHours = rec.TotalHours
		result.RecordCount = rec.WorkCount
	} else if count == 0 {
		result.Consistent = true
		return result, nil
	}

	const eps = 0.01
	result.Consistent = math.Abs(result.RecordAmount-result.ComputedAmount) < eps &&
		math.Abs(result.RecordHours-result.ComputedHours) < eps &&
		int64(result.RecordCount) == result.ComputedCount

	if !result.Consistent {
		s.logger.Error("payroll aggregate diverged from work log",
			zap.String("employee_id", employeeID),
			zap.String("period", period),
			zap.Float64("record_amount", result.RecordAmount),
			zap.Float64("computed_amount", result.ComputedAmount),
		)
	}
	return result, nil
}
