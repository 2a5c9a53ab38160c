package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// HostingRequest freezes a hosting quote at intake time. Settlement charges
// the frozen EstimatedTotal, never a recomputed one.
type HostingRequest struct {
	ID                  uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Location            enums.HostingLocation `gorm:"column:location;type:text;not null"`
	MonitoringType      enums.MonitoringType  `gorm:"column:monitoring_type;type:text;not null;default:'internal'"`
	Status              enums.HostingStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	DeviceCount         int                   `gorm:"column:device_count;not null"`
	SetupFee            decimal.Decimal       `gorm:"column:setup_fee;type:numeric(12,2);not null"`
	EstimatedTotal      decimal.Decimal       `gorm:"column:estimated_total;type:numeric(12,2);not null"`
	ItemsSnapshot       types.CartSnapshot    `gorm:"column:items_snapshot;type:jsonb"`
	ContactPhone        string                `gorm:"column:contact_phone;not null;default:''"`
	IsPaid              bool                  `gorm:"column:is_paid;not null;default:false"`
	MonitoringActive    bool                  `gorm:"column:monitoring_active;not null;default:false"`
	StripePaymentIntent string                `gorm:"column:stripe_payment_intent;not null;default:''"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
