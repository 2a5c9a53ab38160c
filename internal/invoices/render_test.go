package invoices

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

func TestInvoiceNumberFormats(t *testing.T) {
	orderID := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	if got := BuyInvoiceNumber(orderID); got != "INV-BUY-A1B2C3D4" {
		t.Fatalf("unexpected buy number: %s", got)
	}
	if got := HostingInvoiceNumber(orderID); got != "INV-HOST-A1B2C3D4" {
		t.Fatalf("unexpected hosting number: %s", got)
	}

	issued := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	if got := RentInvoiceNumber(issued); got != "INV-RENT-20260830140509" {
		t.Fatalf("unexpected rent number: %s", got)
	}
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		InvoiceNumber:       "INV-HOST-A1B2C3D4",
		PurchaseType:        enums.PurchaseTypeHosting,
		Amount:              decimal.RequireFromString("10298.00"),
		Currency:            "usd",
		StripePaymentIntent: "pi_123",
		IssuedAt:            time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		InvoiceData: types.InvoiceData{
			PurchaseType: "hosting",
			Items: []types.SnapshotItem{{
				Kind:      types.SnapshotItemProduct,
				RefID:     uuid.New(),
				Title:     "Antminer S21",
				Quantity:  2,
				UnitPrice: "3999.00",
				LineTotal: "7998.00",
			}},
			Subtotal: "7998.00",
			SetupFee: "2300.00",
			Total:    "10298.00",
			Currency: "usd",
			Location: "us",
		},
	}
}

func TestRenderDocumentReadsFrozenData(t *testing.T) {
	invoice := sampleInvoice()
	doc := RenderDocument(invoice)

	for _, want := range []string{
		"INV-HOST-A1B2C3D4",
		"Antminer S21",
		"7998.00",
		"Setup fee",
		"2300.00",
		"Total paid",
		"10298.00 USD",
		"Location:  us",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestRenderDocumentIsDeterministic(t *testing.T) {
	invoice := sampleInvoice()
	if RenderDocument(invoice) != RenderDocument(invoice) {
		t.Fatal("expected identical renders")
	}
}

func TestRenderDocumentOmitsEmptySections(t *testing.T) {
	invoice := sampleInvoice()
	invoice.InvoiceData.SetupFee = ""
	invoice.InvoiceData.Location = ""
	invoice.InvoiceData.DurationDays = 0

	doc := RenderDocument(invoice)
	if strings.Contains(doc, "Setup fee") || strings.Contains(doc, "Location:") || strings.Contains(doc, "Duration:") {
		t.Fatalf("document should omit empty sections:\n%s", doc)
	}
	if strings.Contains(doc, "Deliver to:") {
		t.Fatalf("document should omit the address block when none was frozen:\n%s", doc)
	}
}

func TestRenderDocumentIncludesDeliveryAddress(t *testing.T) {
	invoice := sampleInvoice()
	invoice.InvoiceData.DeliveryAddress = &types.Address{
		Name:       "Jamie Doe",
		Line1:      "1 Hashrate Way",
		Line2:      "Suite 4",
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
		Country:    "US",
	}

	doc := RenderDocument(invoice)
	for _, want := range []string{
		"Deliver to:",
		"Jamie Doe",
		"1 Hashrate Way",
		"Suite 4",
		"Austin, TX 78701",
		"US",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestClipKeepsMultibyteTitlesIntact(t *testing.T) {
	title := strings.Repeat("ü", 45)
	invoice := sampleInvoice()
	invoice.InvoiceData.Items[0].Title = title

	doc := RenderDocument(invoice)
	if !utf8.ValidString(doc) {
		t.Fatal("render produced invalid UTF-8")
	}
	clipped := clip(title, 40)
	if got := len([]rune(clipped)); got != 40 {
		t.Fatalf("expected 40 runes after clipping, got %d", got)
	}
	if !strings.HasSuffix(clipped, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", clipped)
	}
}
