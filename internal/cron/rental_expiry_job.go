package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
)

// Rentals ending within this window are surfaced before the sweep expires them.
const expiryWarningWindow = 7 * 24 * time.Hour

type rentalExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RentalExpiryJob deactivates rentals whose paid window has passed.
type RentalExpiryJob struct {
	rentals rentalExpirer
	logg    *logger.Logger
	now     func() time.Time
}

// NewRentalExpiryJob builds the expiry sweep job.
func NewRentalExpiryJob(rentals rentalExpirer, logg *logger.Logger) (*RentalExpiryJob, error) {
	if rentals == nil {
		return nil, fmt.Errorf("rentals service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RentalExpiryJob{
		rentals: rentals,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name implements Job.
func (j *RentalExpiryJob) Name() string {
	return "rental_expiry"
}

// Run implements Job.
func (j *RentalExpiryJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.warnUpcomingExpiries(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.expireDueRentals(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *RentalExpiryJob) warnUpcomingExpiries(ctx context.Context) error {
	cutoff := j.now().Add(expiryWarningWindow)
	upcoming, err := j.rentals.CountExpiringBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("counting upcoming expiries: %w", err)
	}
	if upcoming > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expiring_soon", upcoming), "rentals approaching end of paid window")
	}
	return nil
}

func (j *RentalExpiryJob) expireDueRentals(ctx context.Context) error {
	expired, err := j.rentals.ExpireDue(ctx, j.now())
	if err != nil {
		return fmt.Errorf("expiring rentals: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expired", expired), "rentals deactivated")
	}
	return nil
}
