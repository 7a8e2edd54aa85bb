// Package customer rebuilds per-customer aggregates from bookings.
package customer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/storage/models"
)

// BookingSource loads every booking.
type BookingSource interface {
	ListAll(ctx context.Context) ([]models.Booking, error)
}

// Store persists customer aggregates.
type Store interface {
	Upsert(ctx context.Context, customer *models.Customer) error
}

// Aggregate groups bookings by customer. Cancelled bookings count toward
// TotalBookings but not TotalSpent. LastBookingDate is the latest booking
// creation time. The result is sorted by customer id.
func Aggregate(bookings []models.Booking) []models.Customer {
	byID := make(map[string]*models.Customer)
	for _, b := range bookings {
		c, ok := byID[b.CustomerID]
		if !ok {
			c = &models.Customer{ID: b.CustomerID}
			byID[b.CustomerID] = c
		}

		c.TotalBookings++
		if b.Status != models.BookingStatusCancelled {
			c.TotalSpent += b.TotalPrice
		}
		if c.LastBookingDate == nil || b.CreatedAt.After(*c.LastBookingDate) {
			created := b.CreatedAt
			c.LastBookingDate = &created
		}
	}

	customers := make([]models.Customer, 0, len(byID))
	for _, c := range byID {
		customers = append(customers, *c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].ID < customers[j].ID
	})
	return customers
}

// Result summarizes one reconciliation run.
type Result struct {
	Bookings  int           `json:"bookings"`
	Customers int           `json:"customers"`
	Updated   int           `json:"updated"`
	Failed    []string      `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Notifier is told about finished runs.
type Notifier interface {
	CustomersReconciled(result Result)
}

// Reconciler recomputes every customer aggregate from bookings.
type Reconciler struct {
	bookings BookingSource
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewReconciler creates a reconciler. notifier may be nil.
func NewReconciler(bookings BookingSource, store Store, notifier Notifier, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		bookings: bookings,
		store:    store,
		notifier: notifier,
		logger:   logger.Named("reconciler"),
	}
}

// Run scans all bookings and upserts one aggregate per customer. A failed
// upsert is recorded and the run continues; the returned error joins every
// per-customer failure. Running twice without booking changes writes the
// same aggregates.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	bookings, err := r.bookings.ListAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading bookings: %w", err)
	}

	customers := Aggregate(bookings)
	result := Result{
		Bookings:  len(bookings),
		Customers: len(customers),
		Failed:    []string{},
	}

	var errs []error
	for i := range customers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		c := customers[i]
		if err := r.store.Upsert(ctx, &c); err != nil {
			r.logger.Warn("customer upsert failed", zap.String("customer_id", c.ID), zap.Error(err))
			result.Failed = append(result.Failed, c.ID)
			errs = append(errs, fmt.Errorf("customer %s: %w", c.ID, err))
			continue
		}
		result.Updated++
	}
	result.Duration = time.Since(start)

	r.logger.Info("customer stats reconciled",
		zap.Int("bookings", result.Bookings),
		zap.Int("customers", result.Customers),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failed)),
		zap.Duration("duration", result.Duration),
	)
	if r.notifier != nil {
		r.notifier.CustomersReconciled(result)
	}

	return result, errors.Join(errs...)
}
