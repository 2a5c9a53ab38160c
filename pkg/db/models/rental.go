package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rental is one rented product or bundle line with its paid window. The cron
// sweep flips IsActive once EndDate passes.
type Rental struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID           *uuid.UUID      `gorm:"column:product_id;type:uuid;constraint:OnDelete:SET NULL"`
	BundleID            *uuid.UUID      `gorm:"column:bundle_id;type:uuid;constraint:OnDelete:SET NULL"`
	Title               string          `gorm:"column:title;not null"`
	Quantity            int             `gorm:"column:quantity;not null;default:1"`
	AmountPaid          decimal.Decimal `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	DurationDays        int             `gorm:"column:duration_days;not null"`
	StartDate           time.Time       `gorm:"column:start_date;not null"`
	EndDate             time.Time       `gorm:"column:end_date;not null;index"`
	// No gorm default: a zero-valued bool behind a default tag would be
	// dropped from the INSERT and stored active.
	IsActive            bool            `gorm:"column:is_active;not null"`
	StripePaymentIntent string          `gorm:"column:stripe_payment_intent;not null;default:''"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
