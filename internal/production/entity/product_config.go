package entity

import "encoding/json"

// ProductConfig typed view of the calculator config blob stored on the
// order. Поля, которых нет в json, остаются нулевыми — резолвер материалов
// просто пропускает пустые позиции.
type ProductConfig struct {
	ProductName    string      `json:"product_name"`
	FabricName     string      `json:"fabric_name"`
	FabricQuantity float64     `json:"fabric_quantity"` // погонные метры
	FabricPrice    float64     `json:"fabric_price"`    // цена за метр
	FoamLayers     []FoamLayer `json:"foam_layers"`
	FrameMaterial  string      `json:"frame_material"`
	FramePrice     float64     `json:"frame_price"`
	MechanismName  string      `json:"mechanism_name"`
	MechanismCost  float64     `json:"mechanism_cost"`
	ExtraMaterials []string    `json:"extra_materials"` // свободные строки из калькулятора
}

// FoamLayer слой ППУ
type FoamLayer struct {
	Brand      string  `json:"brand"`
	Thickness  float64 `json:"thickness"` // мм
	Weight     float64 `json:"weight"`    // кг
	PricePerKg float64 `json:"price_per_kg"`
}

// ParseProductConfig decodes the jsonb blob into the typed config.
func ParseProductConfig(raw JSONB) (*ProductConfig, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cfg ProductConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
