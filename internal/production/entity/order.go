package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB wraps a jsonb column (калькуляторная конфигурация изделия и т.п.)
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// Order statuses
const (
	OrderStatusDraft        = "draft" // заказ из калькулятора, ждёт проверки менеджером
	OrderStatusNew          = "new"
	OrderStatusConfirmed    = "confirmed"
	OrderStatusInProduction = "in_production"
	OrderStatusReady        = "ready"
	OrderStatusShipped      = "shipped"
	OrderStatusDelivered    = "delivered"
	OrderStatusCancelled    = "cancelled"
)

// ValidStatusTransitions legal order status graph. cancelled is reachable
// from every non-terminal status; shipped is also reached directly from
// in_production when the kanban board moves an order to the terminal stage.
var ValidStatusTransitions = map[string][]string{
	OrderStatusDraft:        {OrderStatusNew, OrderStatusCancelled},
	OrderStatusNew:          {OrderStatusConfirmed, OrderStatusInProduction, OrderStatusCancelled},
	OrderStatusConfirmed:    {OrderStatusInProduction, OrderStatusCancelled},
	OrderStatusInProduction: {OrderStatusReady, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusReady:        {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:      {OrderStatusDelivered},
}

// Order заказ на изготовление мебели
type Order struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber     string     `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	CustomerName    string     `json:"customer_name" gorm:"size:200;not null"`
	CustomerPhone   string     `json:"customer_phone" gorm:"size:50"`
	CustomerEmail   string     `json:"customer_email" gorm:"size:200"`
	Status          string     `json:"status" gorm:"size:20;not null;default:new;index"`
	Priority        int        `json:"priority" gorm:"default:0"` // 0=обычный, 1=высокий, 2=срочный
	TotalAmount     float64    `json:"total_amount" gorm:"type:decimal(12,2);default:0"`
	PaidAmount      float64    `json:"paid_amount" gorm:"type:decimal(12,2);default:0"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	DeliveryAddress string     `json:"delivery_address" gorm:"size:500"`
	DeliveryNotes   string     `json:"delivery_notes" gorm:"type:text"`
	Source          string     `json:"source" gorm:"size:20;default:manual"` // manual, calculator
	Config          JSONB      `json:"config" gorm:"type:jsonb"`             // конфигурация изделия из калькулятора
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:36"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Operations []ProductionOperation `json:"operations,omitempty" gorm:"foreignKey:OrderID"`
	History    []OrderStatusHistory  `json:"history,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderStatusHistory append-only лог смены статусов заказа
type OrderStatusHistory struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID   string    `json:"order_id" gorm:"size:36;not null;index"`
	Status    string    `json:"status" gorm:"size:20;not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	ChangedBy string    `json:"changed_by" gorm:"size:36"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// OrderSequence атомарный счётчик номеров заказов per (prefix, year)
type OrderSequence struct {
	Prefix     string `json:"prefix" gorm:"primaryKey;size:20"`
	Year       int    `json:"year" gorm:"primaryKey"`
	LastNumber int    `json:"last_number" gorm:"not null;default:0"`
}

func (OrderSequence) TableName() string {
	return "order_sequences"
}
