package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
)

// Repository manages persisted cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListForUser returns the user's cart lines with catalog rows preloaded,
// oldest line first so snapshots are deterministic.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Bundle.Products").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// FindLine loads one line owned by the user.
func (r *Repository) FindLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// findExisting locates a line for the same product or bundle, if any.
func (r *Repository) findExisting(ctx context.Context, userID uuid.UUID, productID, bundleID *uuid.UUID) (*models.CartLine, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	switch {
	case productID != nil:
		query = query.Where("product_id = ?", *productID)
	case bundleID != nil:
		query = query.Where("bundle_id = ?", *bundleID)
	}

	var line models.CartLine
	err := query.First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpsertLine creates a line or bumps the quantity of an existing one for the
// same product/bundle.
func (r *Repository) UpsertLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	existing, err := r.findExisting(ctx, line.UserID, line.ProductID, line.BundleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Quantity += line.Quantity
		if err := r.db.WithContext(ctx).Model(existing).Update("quantity", existing.Quantity).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateQuantity sets the quantity on a line owned by the user.
func (r *Repository) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLine removes a line owned by the user.
func (r *Repository) DeleteLine(ctx context.Context, userID, lineID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearForUser drops every line in the user's cart.
func (r *Repository) ClearForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}
