package enums

import "fmt"

// PurchaseType is the closed set of checkout flows a payment intent can
// settle into. Settlement switches over it exhaustively; anything outside
// the set is rejected before money moves.
type PurchaseType string

const (
	PurchaseTypeBuy     PurchaseType = "buy"
	PurchaseTypeRent    PurchaseType = "rent"
	PurchaseTypeHosting PurchaseType = "hosting"
)

var validPurchaseTypes = []PurchaseType{
	PurchaseTypeBuy,
	PurchaseTypeRent,
	PurchaseTypeHosting,
}

// String implements fmt.Stringer.
func (p PurchaseType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseType.
func (p PurchaseType) IsValid() bool {
	for _, candidate := range validPurchaseTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseType converts raw input into a PurchaseType.
func ParsePurchaseType(value string) (PurchaseType, error) {
	for _, candidate := range validPurchaseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase type %q", value)
}
