package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// InvoiceIntentConstraint names the unique index on stripe_payment_intent.
// Settlement leans on it: a violation means the intent already settled.
const InvoiceIntentConstraint = "invoices_stripe_payment_intent_key"

// Invoice is the settlement record for one paid payment intent. The unique
// stripe_payment_intent column is the idempotency authority for webhooks.
type Invoice struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	InvoiceNumber       string             `gorm:"column:invoice_number;not null;uniqueIndex"`
	PurchaseType        enums.PurchaseType `gorm:"column:purchase_type;type:text;not null"`
	Amount              decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency            string             `gorm:"column:currency;not null;default:'usd'"`
	StripePaymentIntent string             `gorm:"column:stripe_payment_intent;not null;uniqueIndex:invoices_stripe_payment_intent_key"`
	OrderID             *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	HostingRequestID    *uuid.UUID         `gorm:"column:hosting_request_id;type:uuid"`
	InvoiceData         types.InvoiceData  `gorm:"column:invoice_data;type:jsonb"`
	IssuedAt            time.Time          `gorm:"column:issued_at;not null"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
}
