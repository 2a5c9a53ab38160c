package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SnapshotItemKind distinguishes product lines from bundle lines inside a
// frozen cart snapshot.
type SnapshotItemKind string

const (
	SnapshotItemProduct SnapshotItemKind = "product"
	SnapshotItemBundle  SnapshotItemKind = "bundle"
)

// SnapshotItem is one frozen cart line. Amounts are exact decimal strings so
// the snapshot survives round trips without float drift.
type SnapshotItem struct {
	Kind      SnapshotItemKind `json:"kind"`
	RefID     uuid.UUID        `json:"ref_id"`
	Title     string           `json:"title"`
	Quantity  int              `json:"quantity"`
	UnitPrice string           `json:"unit_price"`
	LineTotal string           `json:"line_total"`
}

// CartSnapshot is the full frozen view of a cart at a point in time.
type CartSnapshot struct {
	Items       []SnapshotItem `json:"items"`
	ItemsTotal  string         `json:"items_total"`
	DeviceCount int            `json:"device_count"`
}

// Value marshals the snapshot into jsonb.
func (s CartSnapshot) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("cart snapshot: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the jsonb column.
func (s *CartSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = CartSnapshot{}
		return nil
	}
	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("cart snapshot: unsupported scan type %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		*s = CartSnapshot{}
		return nil
	}
	return json.Unmarshal([]byte(raw), s)
}

// InvoiceData is the frozen payload persisted on an invoice. Document
// rendering reads only this structure, never live rows.
type InvoiceData struct {
	PurchaseType    string         `json:"purchase_type"`
	Items           []SnapshotItem `json:"items"`
	Subtotal        string         `json:"subtotal"`
	SetupFee        string         `json:"setup_fee,omitempty"`
	Total           string         `json:"total"`
	Currency        string         `json:"currency"`
	DurationDays    int            `json:"duration_days,omitempty"`
	Location        string         `json:"location,omitempty"`
	DeliveryAddress *Address       `json:"delivery_address,omitempty"`
	Notes           string         `json:"notes,omitempty"`
}

// Value marshals the invoice payload into jsonb.
func (d InvoiceData) Value() (driver.Value, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("invoice data: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the jsonb column.
func (d *InvoiceData) Scan(value interface{}) error {
	if value == nil {
		*d = InvoiceData{}
		return nil
	}
	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("invoice data: unsupported scan type %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		*d = InvoiceData{}
		return nil
	}
	return json.Unmarshal([]byte(raw), d)
}
