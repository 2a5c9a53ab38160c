package rentals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/db/models"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

func setupRentalsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS rentals (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT,
  bundle_id TEXT,
  title TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  amount_paid TEXT NOT NULL,
  duration_days INTEGER NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  stripe_payment_intent TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return conn
}

func seedRental(t *testing.T, repo *Repository, userID uuid.UUID, endDate time.Time, active bool) models.Rental {
	t.Helper()
	rental := models.Rental{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "Antminer S19",
		Quantity:     1,
		AmountPaid:   decimal.RequireFromString("32.50"),
		DurationDays: 30,
		StartDate:    endDate.AddDate(0, 0, -30),
		EndDate:      endDate,
		IsActive:     active,
	}
	require.NoError(t, repo.Create(context.Background(), &rental))
	return rental
}

func TestExpireDueIsIdempotent(t *testing.T) {
	conn := setupRentalsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.New()

	seedRental(t, repo, userID, now.Add(-time.Hour), true)
	seedRental(t, repo, userID, now.Add(-time.Minute), true)
	current := seedRental(t, repo, userID, now.Add(24*time.Hour), true)

	expired, err := repo.ExpireDue(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, expired)

	// Rerunning the sweep finds nothing left to flip.
	expired, err = repo.ExpireDue(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, expired)

	active, _, err := repo.ListForUser(ctx, listRentalsParams{UserID: userID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)
}

func TestCountExpiringBefore(t *testing.T) {
	conn := setupRentalsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.New()

	seedRental(t, repo, userID, now.Add(24*time.Hour), true)
	seedRental(t, repo, userID, now.Add(48*time.Hour), true)
	seedRental(t, repo, userID, now.Add(30*24*time.Hour), true)
	// Inactive rentals never count toward upcoming expiries.
	seedRental(t, repo, userID, now.Add(24*time.Hour), false)

	count, err := repo.CountExpiringBefore(ctx, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestListForUserActiveFilterAndPaging(t *testing.T) {
	conn := setupRentalsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	seedRental(t, repo, userID, now.Add(24*time.Hour), true)
	seedRental(t, repo, userID, now.Add(-24*time.Hour), false)
	seedRental(t, repo, uuid.New(), now.Add(24*time.Hour), true)

	all, next, err := repo.ListForUser(ctx, listRentalsParams{UserID: userID})
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, all, 2)

	active, _, err := repo.ListForUser(ctx, listRentalsParams{UserID: userID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	paged, next, err := repo.ListForUser(ctx, listRentalsParams{UserID: userID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	if assert.NotNil(t, next) {
		assert.NotEqual(t, uuid.Nil, next.ID)
		_ = pagination.EncodeCursor(*next)
	}
}
