package cart

import (
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

// BuildSnapshot freezes cart lines into a snapshot with exact decimal
// strings. Lines must arrive with Product/Bundle preloaded; order follows
// the repository's created_at ordering so repeated builds agree.
func BuildSnapshot(lines []models.CartLine) (types.CartSnapshot, error) {
	snapshot := types.CartSnapshot{Items: make([]types.SnapshotItem, 0, len(lines))}
	total := decimal.Zero

	for _, line := range lines {
		item, lineTotal, err := snapshotLine(line)
		if err != nil {
			return types.CartSnapshot{}, err
		}
		snapshot.Items = append(snapshot.Items, item)
		snapshot.DeviceCount += line.Quantity
		total = total.Add(lineTotal)
	}

	snapshot.ItemsTotal = total.Round(2).StringFixed(2)
	return snapshot, nil
}

func snapshotLine(line models.CartLine) (types.SnapshotItem, decimal.Decimal, error) {
	switch {
	case line.ProductID != nil:
		if line.Product == nil {
			return types.SnapshotItem{}, decimal.Zero,
				pkgerrors.New(pkgerrors.CodeInternal, "cart line is missing its product")
		}
		lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		return types.SnapshotItem{
			Kind:      types.SnapshotItemProduct,
			RefID:     *line.ProductID,
			Title:     line.Product.ModelName,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price.StringFixed(2),
			LineTotal: lineTotal.Round(2).StringFixed(2),
		}, lineTotal, nil

	case line.BundleID != nil:
		if line.Bundle == nil {
			return types.SnapshotItem{}, decimal.Zero,
				pkgerrors.New(pkgerrors.CodeInternal, "cart line is missing its bundle")
		}
		lineTotal := line.Bundle.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		return types.SnapshotItem{
			Kind:      types.SnapshotItemBundle,
			RefID:     *line.BundleID,
			Title:     line.Bundle.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Bundle.Price.StringFixed(2),
			LineTotal: lineTotal.Round(2).StringFixed(2),
		}, lineTotal, nil

	default:
		return types.SnapshotItem{}, decimal.Zero,
			pkgerrors.New(pkgerrors.CodeInternal, "cart line references neither product nor bundle")
	}
}

// LinesTotal sums live purchase prices across the cart.
func LinesTotal(lines []models.CartLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		_, lineTotal, err := snapshotLine(line)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(lineTotal)
	}
	return total.Round(2), nil
}
