package hosting

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

// Repository exposes persistence helpers for hosting requests.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a hosting repository bound to the provided database.
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

func (r *Repository) Create(ctx context.Context, request *models.HostingRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.HostingRequest, error) {
	var request models.HostingRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *Repository) FindByIDAndUser(ctx context.Context, userID, id uuid.UUID) (*models.HostingRequest, error) {
	var request models.HostingRequest
	if err := r.db.WithContext(ctx).
		First(&request, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

type listRequestsParams struct {
	UserID *uuid.UUID
	Status *enums.HostingStatus
	Limit  int
	Cursor *pagination.Cursor
}

func (r *Repository) List(ctx context.Context, params listRequestsParams) ([]models.HostingRequest, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.HostingRequest{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var requests []models.HostingRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	if len(requests) > normalized {
		next := requests[normalized]
		requests = requests[:normalized]
		return requests, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return requests, nil, nil
}

func (r *Repository) Update(ctx context.Context, request *models.HostingRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// MarkPaid flips a pending request to paid and records the payment intent.
// Returns the number of rows updated so callers can detect replays.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, intentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.HostingRequest{}).
		Where("id = ? AND is_paid = false", id).
		Updates(map[string]any{
			"is_paid":               true,
			"status":                enums.HostingStatusPaid,
			"stripe_payment_intent": intentID,
		})
	return result.RowsAffected, result.Error
}
