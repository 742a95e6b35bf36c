package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories production engine repository set
type Repositories struct {
	Order     *OrderRepository
	Operation *OperationRepository
	Material  *MaterialRepository
	Stock     *StockRepository
	Purchase  *PurchaseRepository
	WorkLog   *WorkLogRepository
	Payroll   *PayrollRepository
	Employee  *EmployeeRepository
}

// NewRepositories создаёт набор репозиториев
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:     NewOrderRepository(db),
		Operation: NewOperationRepository(db),
		Material:  NewMaterialRepository(db),
		Stock:     NewStockRepository(db),
		Purchase:  NewPurchaseRepository(db),
		WorkLog:   NewWorkLogRepository(db),
		Payroll:   NewPayrollRepository(db),
		Employee:  NewEmployeeRepository(db),
	}
}
