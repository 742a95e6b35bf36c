package service

import (
	"context"
	"fmt"
	"time"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderNumberSequencer issues order numbers {prefix}-{year}-{0001}. Счётчик
// живёт в order_sequences и инкрементируется атомарно на стороне БД, так что
// параллельные создания заказов не получают одинаковых номеров. Нумерация
// начинается заново каждый календарный год, отдельно по каждому префиксу.
type OrderNumberSequencer struct {
	orderRepo *repository.OrderRepository
	logger    *zap.Logger
	now       func() time.Time // подменяется в тестах
}

func NewOrderNumberSequencer(orderRepo *repository.OrderRepository, logger *zap.Logger) *OrderNumberSequencer {
	return &OrderNumberSequencer{orderRepo: orderRepo, logger: logger, now: time.Now}
}

// Next returns the next order number for the prefix. При сбое счётчика
// выдаёт деградированный, но уникальный номер на основе unix-времени;
// fallback тоже проходит проверку занятости до коммита.
func (s *OrderNumberSequencer) Next(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	year := s.now().Year()

	// инкремент под savepoint: при SQL-ошибке счётчика внешняя транзакция
	// остаётся живой и fallback с проверкой занятости может выполниться
	var seq int
	err := tx.Transaction(func(tx *gorm.DB) error {
		var err error
		seq, err = s.orderRepo.NextSequence(ctx, tx, prefix, year)
		return err
	})
	if err == nil {
		return fmt.Sprintf("%s-%d-%04d", prefix, year, seq), nil
	}

	s.logger.Error("order sequence counter failed, falling back to timestamp",
		zap.String("prefix", prefix),
		zap.Int("year", year),
		zap.Error(err),
	)

	fallback := fmt.Sprintf("%s-%d", prefix, s.now().UnixMilli())
	exists, checkErr := s.orderRepo.NumberExists(ctx, tx, fallback)
	if checkErr != nil {
		return "", fmt.Errorf("verify fallback order number: %w", checkErr)
	}
	if exists {
		return "", fmt.Errorf("%w: fallback order number %s already taken", ErrConflict, fallback)
	}
	return fallback, nil
}
