package models

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is written once per successful capture and never updated.
// ID is the provider order id; Items holds the serialized cart lines.
type Order struct {
	ID            string            `gorm:"column:id;primaryKey" json:"id"`
	CustomerEmail string            `gorm:"column:customer_email;not null" json:"customerEmail"`
	Items         string            `gorm:"column:items;not null" json:"items"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Status        enums.OrderStatus `gorm:"column:status;not null" json:"status"`
	CreatedAt     int64             `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Order) TableName() string { return "orders" }
