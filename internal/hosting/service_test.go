package hosting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/internal/cart"
	"github.com/cryptonite-hq/cryptonite-backend/internal/pricing"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/config"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

func setupHostingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  model_name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  product_details TEXT,
  minable_coins TEXT,
  hashrate TEXT NOT NULL DEFAULT '',
  power TEXT NOT NULL DEFAULT '',
  algorithm TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  hosting_fee_per_kw TEXT NOT NULL DEFAULT '0',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS bundles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  hosting_fee_per_kw TEXT NOT NULL DEFAULT '0',
  total_hashrate TEXT NOT NULL DEFAULT '',
  total_power TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT,
  bundle_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS hosting_requests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  location TEXT NOT NULL,
  monitoring_type TEXT NOT NULL DEFAULT 'internal',
  status TEXT NOT NULL DEFAULT 'pending',
  device_count INTEGER NOT NULL,
  setup_fee TEXT NOT NULL,
  estimated_total TEXT NOT NULL,
  items_snapshot TEXT,
  contact_phone TEXT NOT NULL DEFAULT '',
  is_paid INTEGER NOT NULL DEFAULT 0,
  monitoring_active INTEGER NOT NULL DEFAULT 0,
  stripe_payment_intent TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`}

	for _, schema := range schemas {
		require.NoError(t, conn.Exec(schema).Error)
	}
	return conn
}

func newHostingService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	fees, err := pricing.NewFees(config.HostingConfig{SetupFeePerDevice: "1150.00"})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo: NewRepository(conn),
		Cart: cart.NewRepository(conn),
		Fees: fees,
	})
	require.NoError(t, err)
	return svc
}

func seedHostingCart(t *testing.T, conn *gorm.DB, userID uuid.UUID) {
	t.Helper()

	product := models.Product{
		ID:        uuid.New(),
		ModelName: "Antminer S21",
		Power:     "3500W",
		Price:     decimal.RequireFromString("3999.00"),
	}
	require.NoError(t, conn.Create(&product).Error)
	require.NoError(t, conn.Create(&models.CartLine{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: &product.ID,
		Quantity:  2,
	}).Error)
}

func TestCreateRequestFreezesQuote(t *testing.T) {
	conn := setupHostingTestDB(t)
	svc := newHostingService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	seedHostingCart(t, conn, userID)

	request, err := svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location: enums.HostingLocationUS,
		Phone:    " +1 555 0100 ",
	})
	require.NoError(t, err)

	assert.Equal(t, enums.HostingStatusPending, request.Status)
	assert.Equal(t, enums.MonitoringTypeInternal, request.MonitoringType)
	assert.Equal(t, 2, request.DeviceCount)
	assert.Equal(t, "2300.00", request.SetupFee.StringFixed(2))
	// 2 x 3999.00 + 2 x 1150.00
	assert.Equal(t, "10298.00", request.EstimatedTotal.StringFixed(2))
	assert.Equal(t, "+1 555 0100", request.ContactPhone)
	require.Len(t, request.ItemsSnapshot.Items, 1)
	assert.Equal(t, "7998.00", request.ItemsSnapshot.ItemsTotal)

	// Intake must not clear the cart; settlement does that.
	lines, err := cart.NewRepository(conn).ListForUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCreateRequestValidation(t *testing.T) {
	conn := setupHostingTestDB(t)
	svc := newHostingService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location: enums.HostingLocation("mars"),
		Phone:    "555",
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location: enums.HostingLocationUAE,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	// Valid form but empty cart.
	_, err = svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location: enums.HostingLocationUAE,
		Phone:    "555",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRejectPaidRequestRefused(t *testing.T) {
	conn := setupHostingTestDB(t)
	svc := newHostingService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	seedHostingCart(t, conn, userID)

	request, err := svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location: enums.HostingLocationEthiopia,
		Phone:    "555",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.HostingStatusRejected, rejected.Status)

	// Rejecting again is a no-op.
	again, err := svc.Reject(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.HostingStatusRejected, again.Status)

	updated, err := NewRepository(conn).MarkPaid(ctx, request.ID, "pi_test_123")
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)

	_, err = svc.Reject(ctx, request.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestActivateMonitoringRequiresPayment(t *testing.T) {
	conn := setupHostingTestDB(t)
	svc := newHostingService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	seedHostingCart(t, conn, userID)

	request, err := svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location:       enums.HostingLocationUS,
		MonitoringType: enums.MonitoringTypeExternal,
		Phone:          "555",
	})
	require.NoError(t, err)

	_, err = svc.ActivateMonitoring(ctx, request.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = NewRepository(conn).MarkPaid(ctx, request.ID, "pi_test_456")
	require.NoError(t, err)

	activated, err := svc.ActivateMonitoring(ctx, request.ID)
	require.NoError(t, err)
	assert.True(t, activated.MonitoringActive)
	assert.Equal(t, enums.HostingStatusActive, activated.Status)
}

func TestGetScopesToOwnerUnlessAdmin(t *testing.T) {
	conn := setupHostingTestDB(t)
	svc := newHostingService(t, conn)
	ctx := context.Background()
	userID := uuid.New()
	seedHostingCart(t, conn, userID)

	request, err := svc.CreateRequest(ctx, userID, CreateRequestInput{
		Location: enums.HostingLocationUS,
		Phone:    "555",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), false, request.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)

	found, err := svc.Get(ctx, uuid.New(), true, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, found.ID)

	mine, next, err := svc.ListMine(ctx, userID, pagination.Params{})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, mine, 1)
	assert.Equal(t, request.ID, mine[0].ID)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected app error, got %v", err)
	assert.Equal(t, code, appErr.Code())
}
