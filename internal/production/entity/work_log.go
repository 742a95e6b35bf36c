package entity

import "time"

// WorkLogEntry факт выполнения операции сотрудником
type WorkLogEntry struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	OrderID         string     `json:"order_id" gorm:"size:36;not null;index"`
	OperationID     string     `json:"operation_id" gorm:"size:36;not null;index"`
	EmployeeID      string     `json:"employee_id" gorm:"size:36;not null;index"`
	Quantity        float64    `json:"quantity" gorm:"type:decimal(12,3);not null"`
	Amount          float64    `json:"amount" gorm:"type:decimal(12,2);not null"` // quantity * operation.unit_price
	WorkDate        time.Time  `json:"work_date" gorm:"not null;index"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes float64    `json:"duration_minutes" gorm:"type:decimal(10,2);not null"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (WorkLogEntry) TableName() string {
	return "work_log_entries"
}

// PayrollRecord месячный агрегат по сотруднику. Обновляется инкрементально
// при каждой записи в work_log; инвариант: total_amount == sum(amount),
// total_hours == sum(duration_minutes)/60 за период.
type PayrollRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	EmployeeID  string    `json:"employee_id" gorm:"size:36;not null;uniqueIndex:udx_employee_period"`
	Period      string    `json:"period" gorm:"size:7;not null;uniqueIndex:udx_employee_period"` // YYYY-MM
	TotalAmount float64   `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	WorkCount   int       `json:"work_count" gorm:"not null;default:0"`
	TotalHours  float64   `json:"total_hours" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PayrollRecord) TableName() string {
	return "payroll_records"
}

// Employee работник производства
type Employee struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Name       string    `json:"name" gorm:"size:200;not null"`
	Department string    `json:"department" gorm:"size:100;index"`
	Position   string    `json:"position" gorm:"size:100"`
	Status     string    `json:"status" gorm:"size:20;not null;default:active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
