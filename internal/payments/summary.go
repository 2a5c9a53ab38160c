package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/internal/cart"
	"github.com/cryptonite-hq/cryptonite-backend/internal/pricing"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// Summary previews what a checkout would charge without opening an intent.
// Hosting summaries estimate from the live cart; the binding hosting quote is
// frozen separately at request intake.
type Summary struct {
	PurchaseType enums.PurchaseType   `json:"purchase_type"`
	Items        []types.SnapshotItem `json:"items"`
	ItemsTotal   decimal.Decimal      `json:"items_total"`
	SetupFee     *decimal.Decimal     `json:"setup_fee,omitempty"`
	DurationDays int                  `json:"duration_days,omitempty"`
	Total        decimal.Decimal      `json:"total"`
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID, purchaseType enums.PurchaseType, durationDays int) (*Summary, error) {
	if !purchaseType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase_type must be buy, rent, or hosting")
	}

	lines, err := s.loadLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch purchaseType {
	case enums.PurchaseTypeRent:
		return rentSummary(lines, durationDays)
	case enums.PurchaseTypeHosting:
		return s.hostingSummary(lines)
	default:
		return buySummary(lines)
	}
}

func buySummary(lines []models.CartLine) (*Summary, error) {
	snapshot, err := cart.BuildSnapshot(lines)
	if err != nil {
		return nil, err
	}
	total, err := cart.LinesTotal(lines)
	if err != nil {
		return nil, err
	}
	return &Summary{
		PurchaseType: enums.PurchaseTypeBuy,
		Items:        snapshot.Items,
		ItemsTotal:   total,
		Total:        total,
	}, nil
}

func rentSummary(lines []models.CartLine, durationDays int) (*Summary, error) {
	days := durationDays
	if days == 0 {
		days = pricing.DefaultDurationDays
	}
	if !pricing.IsAllowedDuration(days) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_days must be one of 30, 60, 90, 180, 365")
	}

	items := make([]types.SnapshotItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		fee, err := lineRentalFee(line, days)
		if err != nil {
			return nil, err
		}
		items = append(items, rentalSummaryItem(line, fee))
		total = total.Add(fee)
	}
	return &Summary{
		PurchaseType: enums.PurchaseTypeRent,
		Items:        items,
		ItemsTotal:   total,
		DurationDays: days,
		Total:        total,
	}, nil
}

func (s *service) hostingSummary(lines []models.CartLine) (*Summary, error) {
	snapshot, err := cart.BuildSnapshot(lines)
	if err != nil {
		return nil, err
	}
	itemsTotal, err := cart.LinesTotal(lines)
	if err != nil {
		return nil, err
	}
	setupFee := s.fees.SetupFee(snapshot.DeviceCount)
	return &Summary{
		PurchaseType: enums.PurchaseTypeHosting,
		Items:        snapshot.Items,
		ItemsTotal:   itemsTotal,
		SetupFee:     &setupFee,
		Total:        itemsTotal.Add(setupFee),
	}, nil
}

func rentalSummaryItem(line models.CartLine, fee decimal.Decimal) types.SnapshotItem {
	item := types.SnapshotItem{
		Quantity:  line.Quantity,
		UnitPrice: fee.StringFixed(2),
		LineTotal: fee.StringFixed(2),
	}
	switch {
	case line.Product != nil:
		item.Kind = types.SnapshotItemProduct
		item.RefID = line.Product.ID
		item.Title = line.Product.ModelName
	case line.Bundle != nil:
		item.Kind = types.SnapshotItemBundle
		item.RefID = line.Bundle.ID
		item.Title = line.Bundle.Name
		item.UnitPrice = line.Bundle.Price.StringFixed(2)
	}
	return item
}
