package rentals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

// Service exposes rental reads and the expiry sweep.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, activeOnly bool, params pagination.Params) ([]models.Rental, *pagination.Cursor, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a rentals service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rentals repository required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, activeOnly bool, params pagination.Params) ([]models.Rental, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rentals, next, err := s.repo.ListForUser(ctx, listRentalsParams{
		UserID:     userID,
		ActiveOnly: activeOnly,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing rentals")
	}
	return rentals, next, nil
}

func (s *service) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expiring rentals")
	}
	return expired, nil
}

func (s *service) CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.CountExpiringBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting expiring rentals")
	}
	return count, nil
}
