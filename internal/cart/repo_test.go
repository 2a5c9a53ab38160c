package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
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
);`}

	for _, schema := range schemas {
		require.NoError(t, conn.Exec(schema).Error)
	}
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, name, price string) models.Product {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		ModelName: name,
		Price:     decimal.RequireFromString(price),
	}
	require.NoError(t, conn.Create(&product).Error)
	return product
}

func TestUpsertLineIncrementsExistingQuantity(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, conn, "Antminer S19", "2499.00")

	first, err := repo.UpsertLine(ctx, &models.CartLine{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: &product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	second, err := repo.UpsertLine(ctx, &models.CartLine{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: &product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same product should merge into one line")
	assert.Equal(t, 3, second.Quantity)

	lines, err := repo.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestUpdateAndDeleteAreScopedToOwner(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()
	product := seedProduct(t, conn, "Whatsminer M50", "2399.50")

	line, err := repo.UpsertLine(ctx, &models.CartLine{
		ID:        uuid.New(),
		UserID:    owner,
		ProductID: &product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	err = repo.UpdateQuantity(ctx, stranger, line.ID, 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteLine(ctx, stranger, line.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateQuantity(ctx, owner, line.ID, 5))
	updated, err := repo.FindLine(ctx, owner, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	require.NoError(t, repo.DeleteLine(ctx, owner, line.ID))
	_, err = repo.FindLine(ctx, owner, line.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClearForUserLeavesOtherCartsAlone(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	product := seedProduct(t, conn, "Antminer S19", "2499.00")

	_, err := repo.UpsertLine(ctx, &models.CartLine{ID: uuid.New(), UserID: alice, ProductID: &product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = repo.UpsertLine(ctx, &models.CartLine{ID: uuid.New(), UserID: bob, ProductID: &product.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, repo.ClearForUser(ctx, alice))

	aliceLines, err := repo.ListForUser(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceLines)

	bobLines, err := repo.ListForUser(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobLines, 1)
}
