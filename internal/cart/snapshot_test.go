package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

func productLine(name, price string, qty int) models.CartLine {
	id := uuid.New()
	return models.CartLine{
		ID:        uuid.New(),
		ProductID: &id,
		Quantity:  qty,
		Product: &models.Product{
			ID:        id,
			ModelName: name,
			Price:     decimal.RequireFromString(price),
		},
	}
}

func bundleLine(name, price string, qty int) models.CartLine {
	id := uuid.New()
	return models.CartLine{
		ID:       uuid.New(),
		BundleID: &id,
		Quantity: qty,
		Bundle: &models.Bundle{
			ID:    id,
			Name:  name,
			Price: decimal.RequireFromString(price),
		},
	}
}

func TestBuildSnapshotTotalsAndOrder(t *testing.T) {
	lines := []models.CartLine{
		productLine("Antminer S19", "100.00", 2),
		bundleLine("Starter Farm", "999.99", 1),
	}

	snapshot, err := BuildSnapshot(lines)
	if err != nil {
		t.Fatalf("BuildSnapshot returned error: %v", err)
	}

	if len(snapshot.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(snapshot.Items))
	}
	if snapshot.Items[0].Kind != types.SnapshotItemProduct || snapshot.Items[0].Title != "Antminer S19" {
		t.Fatalf("unexpected first item %+v", snapshot.Items[0])
	}
	if snapshot.Items[0].LineTotal != "200.00" {
		t.Fatalf("unexpected product line total %q", snapshot.Items[0].LineTotal)
	}
	if snapshot.Items[1].Kind != types.SnapshotItemBundle {
		t.Fatalf("expected bundle second, got %+v", snapshot.Items[1])
	}
	if snapshot.DeviceCount != 3 {
		t.Fatalf("expected device count 3, got %d", snapshot.DeviceCount)
	}
	if !decimal.RequireFromString(snapshot.ItemsTotal).Equal(decimal.RequireFromString("1199.99")) {
		t.Fatalf("unexpected items total %q", snapshot.ItemsTotal)
	}
}

func TestBuildSnapshotEmptyCart(t *testing.T) {
	snapshot, err := BuildSnapshot(nil)
	if err != nil {
		t.Fatalf("BuildSnapshot returned error: %v", err)
	}
	if len(snapshot.Items) != 0 || snapshot.DeviceCount != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestBuildSnapshotRejectsDanglingLine(t *testing.T) {
	lines := []models.CartLine{{ID: uuid.New(), Quantity: 1}}
	if _, err := BuildSnapshot(lines); err == nil {
		t.Fatal("expected error for line without product or bundle")
	}

	id := uuid.New()
	lines = []models.CartLine{{ID: uuid.New(), ProductID: &id, Quantity: 1}}
	if _, err := BuildSnapshot(lines); err == nil {
		t.Fatal("expected error for line missing preloaded product")
	}
}

func TestLinesTotal(t *testing.T) {
	lines := []models.CartLine{
		productLine("Whatsminer M50", "2399.50", 1),
		productLine("Antminer S19", "100.00", 2),
	}
	total, err := LinesTotal(lines)
	if err != nil {
		t.Fatalf("LinesTotal returned error: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("2599.50")) {
		t.Fatalf("unexpected total %s", total)
	}
}
