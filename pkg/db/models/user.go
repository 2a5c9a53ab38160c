package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// User is an account that can own carts, orders, rentals and invoices.
// Credential management lives outside this service; rows here are provisioned
// by the identity system and referenced through JWT claims.
type User struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string         `gorm:"column:email;not null;uniqueIndex"`
	FullName        string         `gorm:"column:full_name;not null"`
	Role            enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	ShippingAddress *types.Address `gorm:"column:shipping_address;type:jsonb"`
	Phone           *string        `gorm:"column:phone"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
