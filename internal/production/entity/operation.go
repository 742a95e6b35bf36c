package entity

import "time"

// Operation types
const (
	OpTypePurchase           = "purchase"             // закупка материалов, заказ остаётся в подтверждённых
	OpTypePurchaseAndProduce = "purchase_and_produce" // закупка + запуск в производство
	OpTypeProduce            = "produce"              // запуск в производство
	OpTypeCancel             = "cancel"               // отмена заказа
)

// Operation statuses
const (
	OpStatusPending    = "pending"
	OpStatusInProgress = "in_progress"
	OpStatusCompleted  = "completed"
)

// Production stages, in kanban column order. Names are exact and
// case-sensitive: the board and MoveStage match on them verbatim.
const (
	StageKB       = "КБ"
	StageJoinery  = "Столярный цех"
	StageFoam     = "Формовка ППУ"
	StageSewing   = "Швейный цех"
	StageAssembly = "Сборка и упаковка"
	StageReady    = "Готов к отгрузке"
	StageShipped  = "Отгружен"
)

// ProductionStages ordered kanban columns
var ProductionStages = []string{
	StageKB,
	StageJoinery,
	StageFoam,
	StageSewing,
	StageAssembly,
	StageReady,
	StageShipped,
}

// IsValidStage reports whether name is one of the seven known stages.
func IsValidStage(name string) bool {
	for _, s := range ProductionStages {
		if s == name {
			return true
		}
	}
	return false
}

// StageIndex returns the zero-based kanban column of a stage, or 0 for an
// unknown/empty stage (orders without an active operation sit in КБ).
func StageIndex(name string) int {
	for i, s := range ProductionStages {
		if s == name {
			return i
		}
	}
	return 0
}

// ValidOperationStatuses статусы заказа, из которых допустим тип операции
var ValidOperationStatuses = map[string][]string{
	OpTypePurchase:           {OrderStatusNew, OrderStatusConfirmed},
	OpTypePurchaseAndProduce: {OrderStatusNew, OrderStatusConfirmed},
	OpTypeProduce:            {OrderStatusNew, OrderStatusConfirmed, OrderStatusInProduction},
	OpTypeCancel:             {OrderStatusNew, OrderStatusConfirmed, OrderStatusInProduction},
}

// OperationResultStatus статус заказа после создания операции
var OperationResultStatus = map[string]string{
	OpTypePurchase:           OrderStatusConfirmed,
	OpTypePurchaseAndProduce: OrderStatusInProduction,
	OpTypeProduce:            OrderStatusInProduction,
	OpTypeCancel:             OrderStatusCancelled,
}

// ProductionOperation производственная операция по заказу
type ProductionOperation struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	OrderID         string     `json:"order_id" gorm:"size:36;not null;index"`
	OperationType   string     `json:"operation_type" gorm:"size:30;not null"`
	ProductionStage string     `json:"production_stage" gorm:"size:50"`
	Status          string     `json:"status" gorm:"size:20;not null;default:pending"`
	AssigneeID      string     `json:"assignee_id" gorm:"size:36"`
	UnitPrice       float64    `json:"unit_price" gorm:"type:decimal(12,2);default:0"` // расценка за единицу работы
	TimeNormMinutes float64    `json:"time_norm_minutes" gorm:"type:decimal(10,2);default:0"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:36"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (ProductionOperation) TableName() string {
	return "production_operations"
}
