package entity

import "time"

// Units used by the calculator-derived requirements
const (
	UnitMeter = "м"
	UnitKg    = "кг"
	UnitPiece = "шт"
)

// MaterialRequirement потребность в материале, вычисленная из конфигурации
// изделия. Upserted on (order_id, normalized_name) — повторный расчёт не
// плодит дубликатов.
type MaterialRequirement struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID        string    `json:"order_id" gorm:"size:36;not null;uniqueIndex:udx_order_material"`
	MaterialName   string    `json:"material_name" gorm:"size:300;not null"`
	NormalizedName string    `json:"normalized_name" gorm:"size:300;not null;uniqueIndex:udx_order_material"`
	Quantity       float64   `json:"quantity" gorm:"type:decimal(12,3);not null"`
	Unit           string    `json:"unit" gorm:"size:20;not null;default:шт"`
	UnitPrice      float64   `json:"unit_price" gorm:"type:decimal(12,2);default:0"`
	Source         string    `json:"source" gorm:"size:30;default:calculator"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MaterialRequirement) TableName() string {
	return "material_requirements"
}

// StockItem складская позиция
type StockItem struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	Name           string    `json:"name" gorm:"size:300;not null"`
	NormalizedName string    `json:"normalized_name" gorm:"size:300;not null;index"`
	Quantity       float64   `json:"quantity" gorm:"type:decimal(12,3);default:0"`
	Unit           string    `json:"unit" gorm:"size:20;not null;default:шт"`
	UnitPrice      float64   `json:"unit_price" gorm:"type:decimal(12,2);default:0"`
	Location       string    `json:"location" gorm:"size:100"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (StockItem) TableName() string {
	return "stock_items"
}
