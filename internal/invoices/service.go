package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

// Service exposes customer-facing invoice reads.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Invoice, *pagination.Cursor, error)
	GetMine(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
	Document(ctx context.Context, userID, id uuid.UUID) (string, error)
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds an invoices service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	return &service{repo: params.Repo}, nil
}

// shortRef compresses a row id into the 8 hex chars used inside invoice
// numbers.
func shortRef(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// BuyInvoiceNumber derives the invoice number for a settled purchase order.
func BuyInvoiceNumber(orderID uuid.UUID) string {
	return "INV-BUY-" + strings.ToUpper(shortRef(orderID))
}

// HostingInvoiceNumber derives the invoice number for a paid hosting request.
func HostingInvoiceNumber(requestID uuid.UUID) string {
	return "INV-HOST-" + strings.ToUpper(shortRef(requestID))
}

// RentInvoiceNumber derives the invoice number for a rent settlement.
// Rentals have no single anchor row, so the issue timestamp is the ref.
func RentInvoiceNumber(issuedAt time.Time) string {
	return "INV-RENT-" + issuedAt.UTC().Format("20060102150405")
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Invoice, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	invoices, next, err := s.repo.ListForUser(ctx, listInvoicesParams{
		UserID: userID,
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing invoices")
	}
	return invoices, next, nil
}

func (s *service) GetMine(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindByIDAndUser(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invoice")
	}
	return invoice, nil
}

func (s *service) Document(ctx context.Context, userID, id uuid.UUID) (string, error) {
	invoice, err := s.GetMine(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return RenderDocument(invoice), nil
}
