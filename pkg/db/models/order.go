package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// OrderStatus tracks the customer-facing lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// Order is a customer order. Metadata is a schemaless JSONB column holding
// the shipping address, the canonical shipping_pricing sub-object and the
// legacy shipping.rate_used mirror; several admin endpoints merge into it
// concurrently, so writers go through the orders service merge protocol.
type Order struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64           `gorm:"column:order_number;not null"`
	CustomerName  string          `gorm:"column:customer_name;not null"`
	CustomerEmail string          `gorm:"column:customer_email;not null"`
	CustomerPhone *string         `gorm:"column:customer_phone"`
	Status        OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	Currency      string          `gorm:"column:currency;type:text;not null;default:'MXN'"`
	SubtotalCents int             `gorm:"column:subtotal_cents;not null"`
	ShippingCents int             `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents      int             `gorm:"column:tax_cents;not null;default:0"`
	TotalCents    int             `gorm:"column:total_cents;not null"`
	Metadata      types.JSONMap   `gorm:"column:metadata;type:jsonb;serializer:json"`
	Items         []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
