package hosting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/internal/cart"
	"github.com/cryptonite-hq/cryptonite-backend/internal/pricing"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

type cartLoader interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
}

// Service drives hosting request intake and the admin review flow.
type Service interface {
	CreateRequest(ctx context.Context, userID uuid.UUID, input CreateRequestInput) (*models.HostingRequest, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.HostingRequest, *pagination.Cursor, error)
	Get(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*models.HostingRequest, error)
	ListAll(ctx context.Context, status *enums.HostingStatus, params pagination.Params) ([]models.HostingRequest, *pagination.Cursor, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.HostingRequest, error)
	ActivateMonitoring(ctx context.Context, id uuid.UUID) (*models.HostingRequest, error)
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Repo *Repository
	Cart cartLoader
	Fees *pricing.Fees
}

type service struct {
	repo *Repository
	cart cartLoader
	fees *pricing.Fees
}

// NewService builds a hosting service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("hosting repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if params.Fees == nil {
		return nil, fmt.Errorf("pricing fees required")
	}
	return &service{repo: params.Repo, cart: params.Cart, fees: params.Fees}, nil
}

// CreateRequestInput collects the intake form fields.
type CreateRequestInput struct {
	Location       enums.HostingLocation
	MonitoringType enums.MonitoringType
	Phone          string
}

func (s *service) CreateRequest(ctx context.Context, userID uuid.UUID, input CreateRequestInput) (*models.HostingRequest, error) {
	if !input.Location.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid hosting location")
	}
	monitoring := input.MonitoringType
	if monitoring == "" {
		monitoring = enums.MonitoringTypeInternal
	}
	if !monitoring.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid monitoring type")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	lines, err := s.cart.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	snapshot, err := cart.BuildSnapshot(lines)
	if err != nil {
		return nil, err
	}
	itemsTotal, err := decimal.NewFromString(snapshot.ItemsTotal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing snapshot total")
	}
	setupFee := s.fees.SetupFee(snapshot.DeviceCount)

	request := &models.HostingRequest{
		UserID:         userID,
		Location:       input.Location,
		MonitoringType: monitoring,
		Status:         enums.HostingStatusPending,
		DeviceCount:    snapshot.DeviceCount,
		SetupFee:       setupFee,
		EstimatedTotal: itemsTotal.Add(setupFee),
		ItemsSnapshot:  snapshot,
		ContactPhone:   strings.TrimSpace(input.Phone),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving hosting request")
	}
	return request, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.HostingRequest, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	requests, next, err := s.repo.List(ctx, listRequestsParams{
		UserID: &userID,
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing hosting requests")
	}
	return requests, next, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*models.HostingRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hosting request not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading hosting request")
	}
	if !isAdmin && request.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hosting request not found")
	}
	return request, nil
}

func (s *service) ListAll(ctx context.Context, status *enums.HostingStatus, params pagination.Params) ([]models.HostingRequest, *pagination.Cursor, error) {
	if status != nil && !status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	requests, next, err := s.repo.List(ctx, listRequestsParams{
		Status: status,
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing hosting requests")
	}
	return requests, next, nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*models.HostingRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hosting request not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading hosting request")
	}
	if request.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "paid requests cannot be rejected")
	}
	if request.Status == enums.HostingStatusRejected {
		return request, nil
	}

	request.Status = enums.HostingStatusRejected
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating hosting request")
	}
	return request, nil
}

func (s *service) ActivateMonitoring(ctx context.Context, id uuid.UUID) (*models.HostingRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hosting request not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading hosting request")
	}
	if !request.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "monitoring requires a paid request")
	}
	if request.MonitoringActive {
		return request, nil
	}

	request.MonitoringActive = true
	request.Status = enums.HostingStatusActive
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating hosting request")
	}
	return request, nil
}
