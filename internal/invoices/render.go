package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
)

const documentWidth = 72

// RenderDocument formats an invoice as a plain-text statement. It reads only
// the frozen invoice_data payload, so the output is stable no matter what
// happened to the catalog since settlement.
func RenderDocument(invoice *models.Invoice) string {
	var b strings.Builder
	rule := strings.Repeat("=", documentWidth)
	thin := strings.Repeat("-", documentWidth)

	data := invoice.InvoiceData

	b.WriteString(rule + "\n")
	b.WriteString(center("CRYPTONITE") + "\n")
	b.WriteString(center("Mining Hardware & Hosting") + "\n")
	b.WriteString(rule + "\n\n")

	b.WriteString(fmt.Sprintf("Invoice:   %s\n", invoice.InvoiceNumber))
	b.WriteString(fmt.Sprintf("Issued:    %s\n", invoice.IssuedAt.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Type:      %s\n", data.PurchaseType))
	if data.DurationDays > 0 {
		b.WriteString(fmt.Sprintf("Duration:  %d days\n", data.DurationDays))
	}
	if data.Location != "" {
		b.WriteString(fmt.Sprintf("Location:  %s\n", data.Location))
	}
	if addr := data.DeliveryAddress; addr != nil {
		b.WriteString("\nDeliver to:\n")
		b.WriteString("  " + addr.Name + "\n")
		b.WriteString("  " + addr.Line1 + "\n")
		if addr.Line2 != "" {
			b.WriteString("  " + addr.Line2 + "\n")
		}
		b.WriteString(fmt.Sprintf("  %s, %s %s\n", addr.City, addr.State, addr.PostalCode))
		b.WriteString("  " + addr.Country + "\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%-40s %5s %12s %12s\n", "Item", "Qty", "Unit", "Total"))
	b.WriteString(thin + "\n")
	for _, item := range data.Items {
		b.WriteString(fmt.Sprintf("%-40s %5d %12s %12s\n",
			clip(item.Title, 40), item.Quantity, item.UnitPrice, item.LineTotal))
	}
	b.WriteString(thin + "\n")

	currency := strings.ToUpper(data.Currency)
	b.WriteString(fmt.Sprintf("%-46s %12s %s\n", "Subtotal", data.Subtotal, currency))
	if data.SetupFee != "" {
		b.WriteString(fmt.Sprintf("%-46s %12s %s\n", "Setup fee", data.SetupFee, currency))
	}
	b.WriteString(fmt.Sprintf("%-46s %12s %s\n", "Total paid", data.Total, currency))

	if data.Notes != "" {
		b.WriteString("\n" + data.Notes + "\n")
	}
	b.WriteString("\n" + rule + "\n")
	return b.String()
}

func center(s string) string {
	if len(s) >= documentWidth {
		return s
	}
	pad := (documentWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
