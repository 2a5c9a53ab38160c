package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type bundleLoader interface {
	FindBundleByID(ctx context.Context, id uuid.UUID) (*models.Bundle, error)
}

// Service exposes cart operations for one authenticated user.
type Service interface {
	AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*models.CartLine, error)
	View(ctx context.Context, userID uuid.UUID) (*View, error)
	UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error
	RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Repo     *Repository
	Products productLoader
	Bundles  bundleLoader
}

type service struct {
	repo     *Repository
	products productLoader
	bundles  bundleLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Bundles == nil {
		return nil, fmt.Errorf("bundle loader required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		bundles:  params.Bundles,
	}, nil
}

// AddLineInput identifies what to add. Exactly one of ProductID and BundleID
// must be set.
type AddLineInput struct {
	ProductID *uuid.UUID
	BundleID  *uuid.UUID
	Quantity  int
}

// View is the assembled cart response: live lines plus the frozen snapshot
// and purchase total derived from them.
type View struct {
	Lines    []models.CartLine  `json:"lines"`
	Snapshot types.CartSnapshot `json:"snapshot"`
	Total    decimal.Decimal    `json:"total"`
}

func (s *service) AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*models.CartLine, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if (input.ProductID == nil) == (input.BundleID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of product_id or bundle_id is required")
	}

	if input.ProductID != nil {
		if _, err := s.products.FindProductByID(ctx, *input.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
	}
	if input.BundleID != nil {
		if _, err := s.bundles.FindBundleByID(ctx, *input.BundleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bundle")
		}
	}

	line := &models.CartLine{
		UserID:    userID,
		ProductID: input.ProductID,
		BundleID:  input.BundleID,
		Quantity:  input.Quantity,
	}
	saved, err := s.repo.UpsertLine(ctx, line)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart line")
	}
	return saved, nil
}

func (s *service) View(ctx context.Context, userID uuid.UUID) (*View, error) {
	lines, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	snapshot, err := BuildSnapshot(lines)
	if err != nil {
		return nil, err
	}
	total, err := LinesTotal(lines)
	if err != nil {
		return nil, err
	}
	return &View{Lines: lines, Snapshot: snapshot, Total: total}, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	err := s.repo.UpdateQuantity(ctx, userID, lineID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}
	return nil
}

func (s *service) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error {
	err := s.repo.DeleteLine(ctx, userID, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearForUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}
