package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/internal/cart"
	"github.com/cryptonite-hq/cryptonite-backend/internal/hosting"
	"github.com/cryptonite-hq/cryptonite-backend/internal/invoices"
	"github.com/cryptonite-hq/cryptonite-backend/internal/orders"
	"github.com/cryptonite-hq/cryptonite-backend/internal/payments"
	"github.com/cryptonite-hq/cryptonite-backend/internal/pricing"
	"github.com/cryptonite-hq/cryptonite-backend/internal/rentals"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// errAlreadySettled signals that another delivery of the same intent won the
// race. The transaction rolls back and the event is acked.
var errAlreadySettled = errors.New("payment intent already settled")

// ServiceParams carries the settlement dependencies.
type ServiceParams struct {
	CartRepo          *cart.Repository
	OrderRepo         *orders.Repository
	RentalRepo        *rentals.Repository
	HostingRepo       *hosting.Repository
	InvoiceRepo       *invoices.Repository
	TransactionRunner txRunner
}

// Service turns verified payment_intent.succeeded events into settled state:
// orders, rentals, or paid hosting requests, always with exactly one invoice
// per intent.
type Service struct {
	cartRepo    *cart.Repository
	orderRepo   *orders.Repository
	rentalRepo  *rentals.Repository
	hostingRepo *hosting.Repository
	invoiceRepo *invoices.Repository
	txRunner    txRunner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo required")
	}
	if params.RentalRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rental repo required")
	}
	if params.HostingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "hosting repo required")
	}
	if params.InvoiceRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		cartRepo:    params.CartRepo,
		orderRepo:   params.OrderRepo,
		rentalRepo:  params.RentalRepo,
		hostingRepo: params.HostingRepo,
		invoiceRepo: params.InvoiceRepo,
		txRunner:    params.TransactionRunner,
	}, nil
}

// HandleEvent settles one verified Stripe event. Event types other than
// payment_intent.succeeded are acked without side effects. Replays of an
// already-settled intent return nil.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	userID, purchaseType, err := identityFromMetadata(intent.Metadata)
	if err != nil {
		return err
	}

	// Fast path for replays. The unique index on stripe_payment_intent is
	// still the authority if two deliveries race past this check.
	if _, err := s.invoiceRepo.FindByStripeIntent(ctx, intent.ID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking for existing invoice")
	}

	currency := string(intent.Currency)
	if currency == "" {
		currency = "usd"
	}

	switch purchaseType {
	case enums.PurchaseTypeBuy:
		err = s.settleBuy(ctx, userID, &intent, currency)
	case enums.PurchaseTypeRent:
		err = s.settleRent(ctx, userID, &intent, currency)
	case enums.PurchaseTypeHosting:
		err = s.settleHosting(ctx, userID, &intent, currency)
	}
	if errors.Is(err, errAlreadySettled) {
		return nil
	}
	return err
}

func identityFromMetadata(metadata map[string]string) (uuid.UUID, enums.PurchaseType, error) {
	rawUser := metadata[payments.MetaUserID]
	if rawUser == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "intent metadata missing user_id")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing user_id metadata")
	}

	purchaseType, err := enums.ParsePurchaseType(metadata[payments.MetaPurchaseType])
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing purchase_type metadata")
	}
	return userID, purchaseType, nil
}

// settleBuy creates the order with items frozen from the live cart, issues
// the invoice, and clears the cart. Totals are recomputed from live catalog
// prices at settlement time.
func (s *Service) settleBuy(ctx context.Context, userID uuid.UUID, intent *stripe.PaymentIntent, currency string) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		lines, err := cartRepo.ListForUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "buy settlement with empty cart")
		}

		snapshot, err := cart.BuildSnapshot(lines)
		if err != nil {
			return err
		}
		total, err := decimal.NewFromString(snapshot.ItemsTotal)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing snapshot total")
		}

		shippingAddress := addressFromMetadata(intent.Metadata)
		order := &models.Order{
			UserID:              userID,
			TotalAmount:         total,
			Currency:            currency,
			Status:              enums.OrderStatusProcessing,
			ShippingAddress:     shippingAddress,
			StripePaymentIntent: intent.ID,
		}
		for _, item := range snapshot.Items {
			orderItem := models.OrderItem{
				Title:     item.Title,
				Quantity:  item.Quantity,
				UnitPrice: decimal.RequireFromString(item.UnitPrice),
				LineTotal: decimal.RequireFromString(item.LineTotal),
			}
			refID := item.RefID
			if item.Kind == types.SnapshotItemProduct {
				orderItem.ProductID = &refID
			} else {
				orderItem.BundleID = &refID
			}
			order.Items = append(order.Items, orderItem)
		}
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		invoice := &models.Invoice{
			UserID:              userID,
			InvoiceNumber:       invoices.BuyInvoiceNumber(order.ID),
			PurchaseType:        enums.PurchaseTypeBuy,
			Amount:              total,
			Currency:            currency,
			StripePaymentIntent: intent.ID,
			OrderID:             &order.ID,
			InvoiceData: types.InvoiceData{
				PurchaseType:    enums.PurchaseTypeBuy.String(),
				Items:           snapshot.Items,
				Subtotal:        snapshot.ItemsTotal,
				Total:           snapshot.ItemsTotal,
				Currency:        currency,
				DeliveryAddress: shippingAddress,
			},
			IssuedAt: time.Now().UTC(),
		}
		if err := s.createInvoice(ctx, tx, invoice); err != nil {
			return err
		}

		if err := cartRepo.ClearForUser(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
}

// settleRent prices every cart line for the paid window, opens one rental
// per line, issues a single aggregate invoice, and clears the cart.
func (s *Service) settleRent(ctx context.Context, userID uuid.UUID, intent *stripe.PaymentIntent, currency string) error {
	days := pricing.DefaultDurationDays
	if raw := intent.Metadata[payments.MetaDurationDays]; raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing duration_days metadata")
		}
		days = parsed
	}
	if !pricing.IsAllowedDuration(days) {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration_days metadata outside offered windows")
	}

	now := time.Now().UTC()
	endDate := now.AddDate(0, 0, days)

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		lines, err := cartRepo.ListForUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rent settlement with empty cart")
		}

		rentalRepo := s.rentalRepo.WithTx(tx)
		total := decimal.Zero
		items := make([]types.SnapshotItem, 0, len(lines))

		for _, line := range lines {
			rental, item, err := buildRental(line, userID, intent.ID, days, now, endDate)
			if err != nil {
				return err
			}
			if err := rentalRepo.Create(ctx, rental); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating rental")
			}
			total = total.Add(rental.AmountPaid)
			items = append(items, item)
		}

		invoice := &models.Invoice{
			UserID:              userID,
			InvoiceNumber:       invoices.RentInvoiceNumber(now),
			PurchaseType:        enums.PurchaseTypeRent,
			Amount:              total,
			Currency:            currency,
			StripePaymentIntent: intent.ID,
			InvoiceData: types.InvoiceData{
				PurchaseType: enums.PurchaseTypeRent.String(),
				Items:        items,
				Subtotal:     total.StringFixed(2),
				Total:        total.StringFixed(2),
				Currency:     currency,
				DurationDays: days,
			},
			IssuedAt: now,
		}
		if err := s.createInvoice(ctx, tx, invoice); err != nil {
			return err
		}

		if err := cartRepo.ClearForUser(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
}

// settleHosting marks the frozen request paid and invoices its quoted
// amounts. Nothing is recomputed from the cart.
func (s *Service) settleHosting(ctx context.Context, userID uuid.UUID, intent *stripe.PaymentIntent, currency string) error {
	rawID := intent.Metadata[payments.MetaHostingRequestID]
	if rawID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "intent metadata missing hosting_request_id")
	}
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing hosting_request_id metadata")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		hostingRepo := s.hostingRepo.WithTx(tx)
		request, err := hostingRepo.FindByIDAndUser(ctx, userID, requestID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "hosting request not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading hosting request")
		}

		updated, err := hostingRepo.MarkPaid(ctx, request.ID, intent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking hosting request paid")
		}
		if updated == 0 {
			return errAlreadySettled
		}

		invoice := &models.Invoice{
			UserID:              userID,
			InvoiceNumber:       invoices.HostingInvoiceNumber(request.ID),
			PurchaseType:        enums.PurchaseTypeHosting,
			Amount:              request.EstimatedTotal,
			Currency:            currency,
			StripePaymentIntent: intent.ID,
			HostingRequestID:    &request.ID,
			InvoiceData: types.InvoiceData{
				PurchaseType: enums.PurchaseTypeHosting.String(),
				Items:        request.ItemsSnapshot.Items,
				Subtotal:     request.ItemsSnapshot.ItemsTotal,
				SetupFee:     request.SetupFee.StringFixed(2),
				Total:        request.EstimatedTotal.StringFixed(2),
				Currency:     currency,
				Location:     request.Location.String(),
			},
			IssuedAt: time.Now().UTC(),
		}
		if err := s.createInvoice(ctx, tx, invoice); err != nil {
			return err
		}

		if err := s.cartRepo.WithTx(tx).ClearForUser(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
}

// createInvoice inserts the settlement invoice. A unique violation on the
// payment intent column means a concurrent delivery already settled this
// intent, so the whole transaction unwinds as a no-op.
func (s *Service) createInvoice(ctx context.Context, tx *gorm.DB, invoice *models.Invoice) error {
	err := s.invoiceRepo.WithTx(tx).Create(ctx, invoice)
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, models.InvoiceIntentConstraint) {
		return errAlreadySettled
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invoice")
}

func buildRental(line models.CartLine, userID uuid.UUID, intentID string, days int, start, end time.Time) (*models.Rental, types.SnapshotItem, error) {
	switch {
	case line.ProductID != nil:
		if line.Product == nil {
			return nil, types.SnapshotItem{}, pkgerrors.New(pkgerrors.CodeInternal, "cart line product not loaded")
		}
		fee, err := pricing.RentalFee(line.Product.Power, line.Product.HostingFeePerKW, days)
		if err != nil {
			return nil, types.SnapshotItem{}, err
		}
		rental := &models.Rental{
			UserID:              userID,
			ProductID:           line.ProductID,
			Title:               line.Product.ModelName,
			Quantity:            line.Quantity,
			AmountPaid:          fee,
			DurationDays:        days,
			StartDate:           start,
			EndDate:             end,
			IsActive:            true,
			StripePaymentIntent: intentID,
		}
		item := types.SnapshotItem{
			Kind:      types.SnapshotItemProduct,
			RefID:     *line.ProductID,
			Title:     line.Product.ModelName,
			Quantity:  line.Quantity,
			UnitPrice: fee.StringFixed(2),
			LineTotal: fee.StringFixed(2),
		}
		return rental, item, nil
	case line.BundleID != nil:
		if line.Bundle == nil {
			return nil, types.SnapshotItem{}, pkgerrors.New(pkgerrors.CodeInternal, "cart line bundle not loaded")
		}
		fee := pricing.BundleRentalFee(line.Bundle.Price, line.Quantity)
		rental := &models.Rental{
			UserID:              userID,
			BundleID:            line.BundleID,
			Title:               line.Bundle.Name,
			Quantity:            line.Quantity,
			AmountPaid:          fee,
			DurationDays:        days,
			StartDate:           start,
			EndDate:             end,
			IsActive:            true,
			StripePaymentIntent: intentID,
		}
		item := types.SnapshotItem{
			Kind:      types.SnapshotItemBundle,
			RefID:     *line.BundleID,
			Title:     line.Bundle.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Bundle.Price.StringFixed(2),
			LineTotal: fee.StringFixed(2),
		}
		return rental, item, nil
	default:
		return nil, types.SnapshotItem{}, pkgerrors.New(pkgerrors.CodeInternal, "cart line has no target")
	}
}

func addressFromMetadata(metadata map[string]string) *types.Address {
	address := types.Address{
		Name:       metadata[payments.MetaName],
		Line1:      metadata[payments.MetaLine1],
		Line2:      metadata[payments.MetaLine2],
		City:       metadata[payments.MetaCity],
		State:      metadata[payments.MetaState],
		PostalCode: metadata[payments.MetaPostalCode],
		Country:    metadata[payments.MetaCountry],
	}
	if address == (types.Address{}) {
		return nil
	}
	return &address
}
