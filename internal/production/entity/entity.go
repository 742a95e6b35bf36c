package entity

import "gorm.io/gorm"

// AutoMigrate migrates all production engine tables. Partial unique indexes
// that gorm tags can't express are applied in cmd/server (raw SQL).
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// заказы
		&Order{},
		&OrderStatusHistory{},
		&OrderSequence{},

		// производство
		&ProductionOperation{},

		// материалы и закупка
		&MaterialRequirement{},
		&StockItem{},
		&PurchaseList{},
		&PurchaseListItem{},

		// работа и зарплата
		&Employee{},
		&WorkLogEntry{},
		&PayrollRecord{},
	)
}

// SupplementalDDL constraints the engine relies on that AutoMigrate can't
// create: the single-active-produce-operation and single-purchase-list
// invariants are enforced here, not only in application checks.
var SupplementalDDL = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS udx_active_produce_operation
		ON production_operations(order_id)
		WHERE status = 'in_progress' AND operation_type = 'produce'`,
	`CREATE INDEX IF NOT EXISTS idx_operations_order_status
		ON production_operations(order_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_work_log_employee_date
		ON work_log_entries(employee_id, work_date)`,
}
