package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/internal/pricing"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// Metadata keys the settlement processor reads back off the intent. They are
// the only state the webhook side may trust.
const (
	MetaUserID           = "user_id"
	MetaPurchaseType     = "purchase_type"
	MetaName             = "name"
	MetaLine1            = "line1"
	MetaLine2            = "line2"
	MetaCity             = "city"
	MetaState            = "state"
	MetaPostalCode       = "postal_code"
	MetaCountry          = "country"
	MetaDurationDays     = "duration_days"
	MetaHostingRequestID = "hosting_request_id"
	MetaHostingLocation  = "hosting_location"
	MetaSetupFee         = "setup_fee"
)

type cartLoader interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
}

type hostingLoader interface {
	FindByIDAndUser(ctx context.Context, userID, id uuid.UUID) (*models.HostingRequest, error)
}

type addressSaver interface {
	SaveShippingAddress(ctx context.Context, userID uuid.UUID, address types.Address) error
}

type intentCreator interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Currency() string
}

// Service quotes a checkout and opens the matching Stripe PaymentIntent.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID, input CreateIntentInput) (*Intent, error)
	Summary(ctx context.Context, userID uuid.UUID, purchaseType enums.PurchaseType, durationDays int) (*Summary, error)
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Cart    cartLoader
	Hosting hostingLoader
	Users   addressSaver
	Stripe  intentCreator
	Fees    *pricing.Fees
}

type service struct {
	cart    cartLoader
	hosting hostingLoader
	users   addressSaver
	stripe  intentCreator
	fees    *pricing.Fees
}

// NewService builds a payments service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if params.Hosting == nil {
		return nil, fmt.Errorf("hosting loader required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("address saver required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if params.Fees == nil {
		return nil, fmt.Errorf("fee schedule required")
	}
	return &service{
		cart:    params.Cart,
		hosting: params.Hosting,
		users:   params.Users,
		stripe:  params.Stripe,
		fees:    params.Fees,
	}, nil
}

// CreateIntentInput is the tagged checkout payload. PurchaseType selects
// which of the variant fields apply.
type CreateIntentInput struct {
	PurchaseType     enums.PurchaseType
	Address          *types.Address
	SaveAddress      bool
	DurationDays     int
	HostingRequestID *uuid.UUID
}

// Intent is what the client needs to confirm the payment.
type Intent struct {
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID, input CreateIntentInput) (*Intent, error) {
	if !input.PurchaseType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase_type must be buy, rent, or hosting")
	}

	metadata := map[string]string{
		MetaUserID:       userID.String(),
		MetaPurchaseType: input.PurchaseType.String(),
	}

	var (
		amount decimal.Decimal
		err    error
	)
	switch input.PurchaseType {
	case enums.PurchaseTypeBuy:
		amount, err = s.quoteBuy(ctx, userID, input, metadata)
	case enums.PurchaseTypeRent:
		amount, err = s.quoteRent(ctx, userID, input, metadata)
	case enums.PurchaseTypeHosting:
		amount, err = s.quoteHosting(ctx, userID, input, metadata)
	}
	if err != nil {
		return nil, err
	}

	cents, err := pricing.AmountToCents(amount)
	if err != nil {
		return nil, err
	}

	currency := s.stripe.Currency()
	intent, err := s.stripe.CreatePaymentIntent(ctx, &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(currency),
		Metadata: metadata,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}

	return &Intent{
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     currency,
	}, nil
}

func (s *service) quoteBuy(ctx context.Context, userID uuid.UUID, input CreateIntentInput, metadata map[string]string) (decimal.Decimal, error) {
	if input.Address == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "address is required for buy")
	}
	if err := input.Address.Validate(); err != nil {
		return decimal.Zero, err
	}

	lines, err := s.loadLines(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, line := range lines {
		price, err := linePurchasePrice(line)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price)
	}

	if input.SaveAddress {
		if err := s.users.SaveShippingAddress(ctx, userID, *input.Address); err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving shipping address")
		}
	}

	metadata[MetaName] = input.Address.Name
	metadata[MetaLine1] = input.Address.Line1
	metadata[MetaLine2] = input.Address.Line2
	metadata[MetaCity] = input.Address.City
	metadata[MetaState] = input.Address.State
	metadata[MetaPostalCode] = input.Address.PostalCode
	metadata[MetaCountry] = input.Address.Country
	return total, nil
}

func (s *service) quoteRent(ctx context.Context, userID uuid.UUID, input CreateIntentInput, metadata map[string]string) (decimal.Decimal, error) {
	days := input.DurationDays
	if days == 0 {
		days = pricing.DefaultDurationDays
	}
	if !pricing.IsAllowedDuration(days) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "duration_days must be one of 30, 60, 90, 180, 365")
	}

	lines, err := s.loadLines(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, line := range lines {
		fee, err := lineRentalFee(line, days)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(fee)
	}

	metadata[MetaDurationDays] = fmt.Sprintf("%d", days)
	return total, nil
}

func (s *service) quoteHosting(ctx context.Context, userID uuid.UUID, input CreateIntentInput, metadata map[string]string) (decimal.Decimal, error) {
	if input.HostingRequestID == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "hosting_request_id is required for hosting")
	}

	request, err := s.hosting.FindByIDAndUser(ctx, userID, *input.HostingRequestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "hosting request not found")
	}
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading hosting request")
	}
	if request.IsPaid {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "hosting request is already paid")
	}

	metadata[MetaHostingRequestID] = request.ID.String()
	metadata[MetaHostingLocation] = request.Location.String()
	metadata[MetaSetupFee] = request.SetupFee.StringFixed(2)

	// The frozen quote is authoritative. Never recompute from the cart here.
	return request.EstimatedTotal, nil
}

func (s *service) loadLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	lines, err := s.cart.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return lines, nil
}

func linePurchasePrice(line models.CartLine) (decimal.Decimal, error) {
	qty := decimal.NewFromInt(int64(line.Quantity))
	switch {
	case line.ProductID != nil:
		if line.Product == nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "cart line product not loaded")
		}
		return line.Product.Price.Mul(qty), nil
	case line.BundleID != nil:
		if line.Bundle == nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "cart line bundle not loaded")
		}
		return line.Bundle.Price.Mul(qty), nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "cart line has no target")
	}
}

// lineRentalFee prices one cart line for a rental window. Product lines are
// power-metered per listing; bundle lines rent at their flat price times
// quantity.
func lineRentalFee(line models.CartLine, days int) (decimal.Decimal, error) {
	switch {
	case line.ProductID != nil:
		if line.Product == nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "cart line product not loaded")
		}
		return pricing.RentalFee(line.Product.Power, line.Product.HostingFeePerKW, days)
	case line.BundleID != nil:
		if line.Bundle == nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "cart line bundle not loaded")
		}
		return pricing.BundleRentalFee(line.Bundle.Price, line.Quantity), nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "cart line has no target")
	}
}
