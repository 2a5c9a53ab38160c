package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// Order is an outright purchase settled from a buy payment intent.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	TotalAmount         decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency            string            `gorm:"column:currency;not null;default:'usd'"`
	Status              enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ShippingAddress     *types.Address    `gorm:"column:shipping_address;type:jsonb"`
	StripePaymentIntent string            `gorm:"column:stripe_payment_intent;not null;default:''"`
	Items               []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem freezes one cart line at settlement time. Product and bundle
// references null out on catalog deletion; Title keeps the line readable.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID *uuid.UUID      `gorm:"column:product_id;type:uuid;constraint:OnDelete:SET NULL"`
	BundleID  *uuid.UUID      `gorm:"column:bundle_id;type:uuid;constraint:OnDelete:SET NULL"`
	Title     string          `gorm:"column:title;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
