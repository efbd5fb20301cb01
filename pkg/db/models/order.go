package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jordanhale/storefront-backend/pkg/enums"
	"github.com/jordanhale/storefront-backend/pkg/types"
)

// Order is the durable record produced by a successful checkout. Amounts are
// denormalized from the item snapshots; the tax column keeps three decimal
// places so recomputing totals from snapshots reproduces the stored value.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`
	UserID          *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,3);not null"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,3);not null"`
	ShippingAmount  decimal.Decimal     `gorm:"column:shipping_amount;type:numeric(12,3);not null"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,3);not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = enums.PaymentStatusPending
	}
	return nil
}
