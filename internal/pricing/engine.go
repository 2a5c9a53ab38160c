package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
)

// Allowed rental durations in days.
var allowedDurations = []int{30, 60, 90, 180, 365}

// DefaultDurationDays is the rental window assumed when none is given.
const DefaultDurationDays = 30

// Billing months are fixed at 30 days; the daily rate divides the monthly
// fee by this before multiplying out the rental window.
const daysPerMonth = 30

var (
	powerPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kw|w)`)

	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// IsAllowedDuration reports whether days is a rentable window.
func IsAllowedDuration(days int) bool {
	for _, d := range allowedDurations {
		if d == days {
			return true
		}
	}
	return false
}

// AllowedDurations returns the rentable windows in days.
func AllowedDurations() []int {
	out := make([]int, len(allowedDurations))
	copy(out, allowedDurations)
	return out
}

// ParsePowerKW extracts the draw in kilowatts from a free-text power label
// such as "3250W", "3.25 kW" or "Power: 3250 w". The first magnitude+unit
// pair wins.
func ParsePowerKW(label string) (decimal.Decimal, error) {
	match := powerPattern.FindStringSubmatch(label)
	if match == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "power label has no recognizable wattage").
			WithDetails(map[string]string{"power": label})
	}

	magnitude, err := decimal.NewFromString(match[1])
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing power magnitude")
	}

	if strings.EqualFold(match[2], "w") {
		return magnitude.Div(thousand), nil
	}
	return magnitude, nil
}

// RentalFee quotes renting one unit for durationDays. The monthly fee is
// powerKW x feePerKW; the daily rate divides by the 30-day month and the
// total rounds half-up to cents exactly once, at the end.
func RentalFee(powerLabel string, feePerKW decimal.Decimal, durationDays int) (decimal.Decimal, error) {
	if !IsAllowedDuration(durationDays) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "rental duration is not offered").
			WithDetails(map[string]any{"duration_days": durationDays, "allowed": AllowedDurations()})
	}

	powerKW, err := ParsePowerKW(powerLabel)
	if err != nil {
		return decimal.Zero, err
	}
	if !feePerKW.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product has no hosting rate configured")
	}

	monthly := powerKW.Mul(feePerKW)
	daily := monthly.Div(decimal.NewFromInt(daysPerMonth))
	total := daily.Mul(decimal.NewFromInt(int64(durationDays)))
	return total.Round(2), nil
}

// BundleRentalFee quotes a bundle line. Bundles rent at their flat price,
// power labels never enter the math.
func BundleRentalFee(bundlePrice decimal.Decimal, quantity int) decimal.Decimal {
	return bundlePrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// AmountToCents converts a settlement amount to an integer cent count for
// the payment provider. The amount must land exactly on a positive cent.
func AmountToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred)
	if !cents.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount has sub-cent precision").
			WithDetails(map[string]string{"amount": amount.String()})
	}
	if !cents.IsPositive() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive").
			WithDetails(map[string]string{"amount": amount.String()})
	}
	return cents.IntPart(), nil
}
