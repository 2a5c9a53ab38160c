package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is one miner listing. Power is the manufacturer label ("3250W",
// "3.25 kW"); the pricing engine parses it to kilowatts when quoting rentals.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ModelName      string          `gorm:"column:model_name;not null"`
	Description    string          `gorm:"column:description;not null;default:''"`
	ProductDetails *string         `gorm:"column:product_details"`
	MinableCoins   pq.StringArray  `gorm:"column:minable_coins;type:text[];not null;default:ARRAY[]::text[]"`
	Hashrate       string          `gorm:"column:hashrate;not null;default:''"`
	Power          string          `gorm:"column:power;not null;default:''"`
	Algorithm      string          `gorm:"column:algorithm;not null;default:''"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	HostingFeePerKW decimal.Decimal `gorm:"column:hosting_fee_per_kw;type:numeric(12,2);not null;default:0"`
	IsActive       bool            `gorm:"column:is_active;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
