package rentals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

// Repository exposes persistence helpers for rentals.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a rentals repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, rental *models.Rental) error {
	return r.db.WithContext(ctx).Create(rental).Error
}

type listRentalsParams struct {
	UserID     uuid.UUID
	ActiveOnly bool
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *Repository) ListForUser(ctx context.Context, params listRentalsParams) ([]models.Rental, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Rental{}).Where("user_id = ?", params.UserID)
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rentals []models.Rental
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rentals).Error; err != nil {
		return nil, nil, err
	}

	if len(rentals) > normalized {
		next := rentals[normalized]
		rentals = rentals[:normalized]
		return rentals, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rentals, nil, nil
}

// CountExpiringBefore counts active rentals whose window ends before the
// cutoff, for operator visibility ahead of the expiry sweep.
func (r *Repository) CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("is_active = ? AND end_date < ?", true, cutoff).
		Count(&count).Error
	return count, err
}

// ExpireDue flips every active rental whose window has passed. One batch
// UPDATE, so reruns are harmless.
func (r *Repository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("is_active = ? AND end_date < ?", true, now).
		UpdateColumn("is_active", false)
	return result.RowsAffected, result.Error
}
