package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bundle is a curated multi-miner offer sold and rented at a flat price.
type Bundle struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Description     string          `gorm:"column:description;not null;default:''"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	HostingFeePerKW decimal.Decimal `gorm:"column:hosting_fee_per_kw;type:numeric(12,2);not null;default:0"`
	TotalHashrate   string          `gorm:"column:total_hashrate;not null;default:''"`
	TotalPower      string          `gorm:"column:total_power;not null;default:''"`
	IsActive        bool            `gorm:"column:is_active;not null"`
	Products        []Product       `gorm:"many2many:bundle_products"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
