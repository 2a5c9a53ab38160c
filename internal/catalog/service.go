package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
)

// Service exposes catalog reads for the storefront and writes for admins.
type Service interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListBundles(ctx context.Context) ([]models.Bundle, error)
	GetBundle(ctx context.Context, id uuid.UUID) (*models.Bundle, error)
	CreateBundle(ctx context.Context, input BundleInput) (*models.Bundle, error)
	UpdateBundle(ctx context.Context, id uuid.UUID, input BundleInput) (*models.Bundle, error)
	DeleteBundle(ctx context.Context, id uuid.UUID) error
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: params.Repo}, nil
}

// ProductInput is the admin-facing product payload. Amounts travel as
// strings and parse to exact decimals.
type ProductInput struct {
	ModelName       string
	Description     string
	ProductDetails  *string
	MinableCoins    []string
	Hashrate        string
	Power           string
	Algorithm       string
	Price           string
	HostingFeePerKW string
	IsActive        *bool
}

// BundleInput is the admin-facing bundle payload.
type BundleInput struct {
	Name            string
	Description     string
	Price           string
	HostingFeePerKW string
	TotalHashrate   string
	TotalPower      string
	ProductIDs      []uuid.UUID
	IsActive        *bool
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid decimal amount").
			WithDetails(map[string]string{field: raw})
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative").
			WithDetails(map[string]string{field: raw})
	}
	return value, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	product, err := productFromInput(&models.Product{}, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := productFromInput(existing, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func productFromInput(base *models.Product, input ProductInput) (*models.Product, error) {
	if input.ModelName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model_name is required")
	}
	price, err := parseAmount("price", input.Price)
	if err != nil {
		return nil, err
	}
	hostingFee, err := parseAmount("hosting_fee_per_kw", input.HostingFeePerKW)
	if err != nil {
		return nil, err
	}

	base.ModelName = input.ModelName
	base.Description = input.Description
	base.ProductDetails = input.ProductDetails
	base.MinableCoins = input.MinableCoins
	base.Hashrate = input.Hashrate
	base.Power = input.Power
	base.Algorithm = input.Algorithm
	base.Price = price
	base.HostingFeePerKW = hostingFee
	if input.IsActive != nil {
		base.IsActive = *input.IsActive
	} else if base.ID == uuid.Nil {
		base.IsActive = true
	}
	return base, nil
}

func (s *service) ListBundles(ctx context.Context) ([]models.Bundle, error) {
	bundles, err := s.repo.ListBundles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bundles")
	}
	return bundles, nil
}

func (s *service) GetBundle(ctx context.Context, id uuid.UUID) (*models.Bundle, error) {
	bundle, err := s.repo.FindBundleByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bundle")
	}
	return bundle, nil
}

func (s *service) CreateBundle(ctx context.Context, input BundleInput) (*models.Bundle, error) {
	bundle, err := s.bundleFromInput(ctx, &models.Bundle{}, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateBundle(ctx, bundle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating bundle")
	}
	return bundle, nil
}

func (s *service) UpdateBundle(ctx context.Context, id uuid.UUID, input BundleInput) (*models.Bundle, error) {
	existing, err := s.GetBundle(ctx, id)
	if err != nil {
		return nil, err
	}
	bundle, err := s.bundleFromInput(ctx, existing, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBundle(ctx, bundle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating bundle")
	}
	return bundle, nil
}

func (s *service) DeleteBundle(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteBundle(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting bundle")
	}
	return nil
}

func (s *service) bundleFromInput(ctx context.Context, base *models.Bundle, input BundleInput) (*models.Bundle, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	price, err := parseAmount("price", input.Price)
	if err != nil {
		return nil, err
	}
	hostingFee, err := parseAmount("hosting_fee_per_kw", input.HostingFeePerKW)
	if err != nil {
		return nil, err
	}

	members := make([]models.Product, 0, len(input.ProductIDs))
	for _, productID := range input.ProductIDs {
		product, err := s.repo.FindProductByID(ctx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle references unknown product").
				WithDetails(map[string]string{"product_id": productID.String()})
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bundle product")
		}
		members = append(members, *product)
	}

	base.Name = input.Name
	base.Description = input.Description
	base.Price = price
	base.HostingFeePerKW = hostingFee
	base.TotalHashrate = input.TotalHashrate
	base.TotalPower = input.TotalPower
	base.Products = members
	if input.IsActive != nil {
		base.IsActive = *input.IsActive
	} else if base.ID == uuid.Nil {
		base.IsActive = true
	}
	return base, nil
}
