package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine holds one product or bundle in a user's cart. Exactly one of
// ProductID and BundleID is set; the database CHECK enforces it.
type CartLine struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID *uuid.UUID `gorm:"column:product_id;type:uuid"`
	BundleID  *uuid.UUID `gorm:"column:bundle_id;type:uuid"`
	Quantity  int        `gorm:"column:quantity;not null;default:1"`
	Product   *Product   `gorm:"foreignKey:ProductID"`
	Bundle    *Bundle    `gorm:"foreignKey:BundleID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
