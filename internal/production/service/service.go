package service

import (
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services production engine service set
type Services struct {
	StateMachine *OrderStateMachine
	Sequencer    *OrderNumberSequencer
	Order        *OrderService
	Operation    *OperationService
	Kanban       *KanbanService
	Material     *MaterialService
	Purchase     *PurchaseService
	Payroll      *PayrollService
	Report       *ReportService
}

// NewServices собирает сервисы поверх репозиториев. orderPrefix — префикс
// номеров заказов из конфигурации, пустая строка даёт DefaultOrderPrefix.
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, orderPrefix string, logger *zap.Logger) *Services {
	stateMachine := NewOrderStateMachine(repos.Order, logger)
	sequencer := NewOrderNumberSequencer(repos.Order, logger)
	boardCache := NewBoardCache(rdb, logger)
	materialSvc := NewMaterialService(repos.Order, repos.Material, logger)

	return &Services{
		StateMachine: stateMachine,
		Sequencer:    sequencer,
		Order:        NewOrderService(repos.Order, sequencer, stateMachine, boardCache, orderPrefix, db, logger),
		Operation:    NewOperationService(repos.Order, repos.Operation, stateMachine, boardCache, db, logger),
		Kanban:       NewKanbanService(repos.Order, repos.Operation, stateMachine, boardCache, db, logger),
		Material:     materialSvc,
		Purchase:     NewPurchaseService(materialSvc, repos.Stock, repos.Purchase, db, logger),
		Payroll:      NewPayrollService(repos.Order, repos.Operation, repos.Employee, repos.WorkLog, repos.Payroll, db, logger),
		Report:       NewReportService(repos.Payroll, repos.Employee, logger),
	}
}
