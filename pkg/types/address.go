package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
)

// Address is the shipping contact block stored as a jsonb column and echoed
// into Stripe intent metadata for buy checkouts.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate enforces the required fields for a deliverable address.
func (a Address) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", a.Name},
		{"line1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	}
	missing := []string{}
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			missing = append(missing, item.field)
		}
	}
	if len(missing) > 0 {
		details := map[string]string{}
		for _, field := range missing {
			details[field] = "required"
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "address: missing "+strings.Join(missing, ", ")).
			WithDetails(details)
	}
	return nil
}

// Value marshals Address into jsonb.
func (a Address) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("address: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the jsonb column.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		*a = Address{}
		return nil
	}
	return json.Unmarshal([]byte(raw), a)
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
