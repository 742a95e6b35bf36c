package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"go.uber.org/zap"
)

// MaterialService derives material requirements from the order's calculator
// config and keeps the material_requirements table in sync.
type MaterialService struct {
	orderRepo    *repository.OrderRepository
	materialRepo *repository.MaterialRepository
	logger       *zap.Logger
}

func NewMaterialService(orderRepo *repository.OrderRepository, materialRepo *repository.MaterialRepository, logger *zap.Logger) *MaterialService {
	return &MaterialService{orderRepo: orderRepo, materialRepo: materialRepo, logger: logger}
}

// ExtractRequirements builds requirement candidates from a product config.
// Одна позиция на: ткань (если расход > 0), каждый слой ППУ с маркой и
// положительным весом, каждую непустую свободную строку, каркас, механизм
// (если цена > 0). Чистая функция, без обращений к БД.
func ExtractRequirements(orderID string, cfg *entity.ProductConfig) []entity.MaterialRequirement {
	now := time.Now()
	var reqs []entity.MaterialRequirement

	add := func(name string, qty float64, unit string, price float64) {
		normalized := NormalizeName(name)
		if normalized == "" {
			return
		}
		reqs = append(reqs, entity.MaterialRequirement{
			ID:             uuid.New().String(),
			OrderID:        orderID,
			MaterialName:   name,
			NormalizedName: normalized,
			Quantity:       qty,
			Unit:           unit,
			UnitPrice:      price,
			Source:         "calculator",
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if cfg.FabricQuantity > 0 && cfg.FabricName != "" {
		add(cfg.FabricName, cfg.FabricQuantity, entity.UnitMeter, cfg.FabricPrice)
	}
	for _, layer := range cfg.FoamLayers {
		if layer.Brand == "" || layer.Weight <= 0 {
			continue
		}
		add("ППУ "+layer.Brand, layer.Weight, entity.UnitKg, layer.PricePerKg)
	}
	for _, line := range cfg.ExtraMaterials {
		add(line, 1, entity.UnitPiece, 0)
	}
	if cfg.FrameMaterial != "" {
		add(cfg.FrameMaterial, 1, entity.UnitPiece, cfg.FramePrice)
	}
	if cfg.MechanismCost > 0 {
		name := cfg.MechanismName
		if name == "" {
			name = "Механизм трансформации"
		}
		add(name, 1, entity.UnitPiece, cfg.MechanismCost)
	}
	return reqs
}

// Resolve recomputes the order's requirements from its config and upserts
// them keyed on (order, normalized name). Идемпотентна: повторный вызов без
// изменения конфигурации не меняет набор строк.
func (s *MaterialService) Resolve(ctx context.Context, orderID string) ([]entity.MaterialRequirement, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	cfg, err := entity.ParseProductConfig(order.Config)
	if err != nil {
		return nil, fmt.Errorf("parse product config of order %s: %w", order.OrderNumber, err)
	}

	reqs := ExtractRequirements(order.ID, cfg)
	if err := s.materialRepo.Upsert(ctx, reqs); err != nil {
		return nil, fmt.Errorf("upsert material requirements: %w", err)
	}

	s.logger.Info("material requirements resolved",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("count", len(reqs)),
	)
	return reqs, nil
}

// FindByOrder сохранённые потребности заказа
func (s *MaterialService) FindByOrder(ctx context.Context, orderID string) ([]entity.MaterialRequirement, error) {
	return s.materialRepo.FindByOrder(ctx, orderID)
}
