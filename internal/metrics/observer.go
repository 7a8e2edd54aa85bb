package metrics

import (
	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/storage/models"
)

// BookingPublisher receives booking lifecycle events.
type BookingPublisher interface {
	BookingCreated(booking models.Booking)
	BookingStatusChanged(booking models.Booking, previousStatus string)
	BookingDeleted(id string)
}

// ReconcileNotifier receives reconciliation results.
type ReconcileNotifier interface {
	CustomersReconciled(result customer.Result)
}

// Observer counts domain events and forwards them to the next receivers.
type Observer struct {
	m          *Metrics
	bookings   BookingPublisher
	reconciles ReconcileNotifier
}

// Observe wraps the given receivers, either of which may be nil.
func (m *Metrics) Observe(bookings BookingPublisher, reconciles ReconcileNotifier) *Observer {
	return &Observer{m: m, bookings: bookings, reconciles: reconciles}
}

func (o *Observer) BookingCreated(booking models.Booking) {
	o.m.BookingEvents.WithLabelValues("created").Inc()
	if o.bookings != nil {
		o.bookings.BookingCreated(booking)
	}
}

func (o *Observer) BookingStatusChanged(booking models.Booking, previousStatus string) {
	o.m.BookingEvents.WithLabelValues(booking.Status).Inc()
	if o.bookings != nil {
		o.bookings.BookingStatusChanged(booking, previousStatus)
	}
}

func (o *Observer) BookingDeleted(id string) {
	o.m.BookingEvents.WithLabelValues("deleted").Inc()
	if o.bookings != nil {
		o.bookings.BookingDeleted(id)
	}
}

func (o *Observer) CustomersReconciled(result customer.Result) {
	outcome := "success"
	if len(result.Failed) > 0 {
		outcome = "partial"
	}
	o.m.ReconcileRuns.WithLabelValues(outcome).Inc()
	if o.reconciles != nil {
		o.reconciles.CustomersReconciled(result)
	}
}
