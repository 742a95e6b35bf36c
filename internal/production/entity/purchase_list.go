package entity

import "time"

// PurchaseList список закупки по заказу: только недостающие материалы.
// Не более одного списка на заказ (uniqueIndex на order_id).
type PurchaseList struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID   string    `json:"order_id" gorm:"size:36;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:200"`
	Notes     string    `json:"notes" gorm:"type:text"`
	Status    string    `json:"status" gorm:"size:20;not null;default:draft"`
	TotalCost float64   `json:"total_cost" gorm:"type:decimal(12,2);default:0"`
	CreatedBy string    `json:"created_by" gorm:"size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []PurchaseListItem `json:"items,omitempty" gorm:"foreignKey:PurchaseListID"`
}

func (PurchaseList) TableName() string {
	return "purchase_lists"
}

// PurchaseListItem строка списка закупки
type PurchaseListItem struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	PurchaseListID string    `json:"purchase_list_id" gorm:"size:36;not null;index"`
	MaterialName   string    `json:"material_name" gorm:"size:300;not null"`
	RequiredQty    float64   `json:"required_qty" gorm:"type:decimal(12,3);not null"`
	AvailableQty   float64   `json:"available_qty" gorm:"type:decimal(12,3);default:0"`
	MissingQty     float64   `json:"missing_qty" gorm:"type:decimal(12,3);not null"`
	Unit           string    `json:"unit" gorm:"size:20;not null;default:шт"`
	UnitPrice      float64   `json:"unit_price" gorm:"type:decimal(12,2);default:0"`
	TotalPrice     float64   `json:"total_price" gorm:"type:decimal(12,2);default:0"`
	CreatedAt      time.Time `json:"created_at"`
}

func (PurchaseListItem) TableName() string {
	return "purchase_list_items"
}
