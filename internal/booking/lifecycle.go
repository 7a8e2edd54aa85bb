package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/storage/models"
)

// transitions lists the statuses reachable from each status.
var transitions = map[string][]string{
	models.BookingStatusUnconfirmed: {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed:   {models.BookingStatusCheckedIn, models.BookingStatusCancelled, models.BookingStatusUnconfirmed},
	models.BookingStatusCheckedIn:   {models.BookingStatusCheckedOut},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateInput describes a new booking.
type CreateInput struct {
	CabinID      string
	CustomerID   string
	CheckIn      time.Time
	CheckOut     time.Time
	NumGuests    int
	HasBreakfast bool
	Observations string
	Status       string
}

// UpdateInput carries the editable fields of a booking.
type UpdateInput struct {
	CheckIn      time.Time
	CheckOut     time.Time
	NumGuests    int
	HasBreakfast bool
	Observations string
}

// Create books a cabin. The cabin's current nightly rate is copied into the
// booking so later price changes do not alter it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	if in.Status == "" {
		in.Status = models.BookingStatusUnconfirmed
	}
	if in.Status != models.BookingStatusUnconfirmed && in.Status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: new bookings start unconfirmed or confirmed", ErrInvalidStatus)
	}

	cabin, err := s.cabins.GetByID(ctx, in.CabinID)
	if err != nil {
		return nil, fmt.Errorf("loading cabin %s: %w", in.CabinID, err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	b := &models.Booking{
		CabinID:      cabin.ID,
		CustomerID:   in.CustomerID,
		CabinPrice:   cabin.NightlyRate(),
		Status:       in.Status,
		Observations: in.Observations,
	}
	if err := s.applyStay(b, cabin, settings, in.CheckIn, in.CheckOut, in.NumGuests, in.HasBreakfast); err != nil {
		return nil, err
	}

	if err := s.bookings.CreateIfAvailable(ctx, b); err != nil {
		if errors.Is(err, storage.ErrBookingOverlap) {
			return nil, ErrCabinUnavailable
		}
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("cabin_id", b.CabinID),
		zap.String("customer_id", b.CustomerID),
		zap.Int("nights", b.NumNights),
	)
	if s.publisher != nil {
		s.publisher.BookingCreated(*b)
	}
	return b, nil
}

// Update changes the stay of a booking, keeping its price snapshot.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusCheckedOut || b.Status == models.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: %s bookings cannot be edited", ErrInvalidTransition, b.Status)
	}

	cabin, err := s.cabins.GetByID(ctx, b.CabinID)
	if err != nil {
		return nil, fmt.Errorf("loading cabin %s: %w", b.CabinID, err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	b.Observations = in.Observations
	if err := s.applyStay(b, cabin, settings, in.CheckIn, in.CheckOut, in.NumGuests, in.HasBreakfast); err != nil {
		return nil, err
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		if errors.Is(err, storage.ErrBookingOverlap) {
			return nil, ErrCabinUnavailable
		}
		return nil, fmt.Errorf("updating booking: %w", err)
	}
	return b, nil
}

// applyStay validates dates and guests and derives nights and prices.
func (s *Service) applyStay(b *models.Booking, cabin *models.Cabin, settings models.Settings, checkIn, checkOut time.Time, guests int, breakfast bool) error {
	if !checkOut.After(checkIn) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidRange)
	}
	if guests < 1 || guests > cabin.Capacity || (settings.MaxGuestsPerBooking > 0 && guests > settings.MaxGuestsPerBooking) {
		return fmt.Errorf("%w: cabin %s takes %d", ErrTooManyGuests, cabin.Name, cabin.Capacity)
	}

	nights := models.Nights(checkIn, checkOut)
	if nights < settings.MinBookingLength || (settings.MaxBookingLength > 0 && nights > settings.MaxBookingLength) {
		return fmt.Errorf("%w: %d nights, allowed %d-%d", ErrStayLength, nights, settings.MinBookingLength, settings.MaxBookingLength)
	}

	b.CheckIn = checkIn
	b.CheckOut = checkOut
	b.NumNights = nights
	b.NumGuests = guests
	b.ExtrasPrice = 0
	if breakfast {
		b.ExtrasPrice = settings.BreakfastPrice * float64(nights*guests)
	}
	b.TotalPrice = b.CabinPrice*float64(nights) + b.ExtrasPrice
	return nil
}

// ChangeStatus moves a booking to a new status if the lifecycle allows it.
func (s *Service) ChangeStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	if !models.ValidBookingStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
	}

	if err := s.bookings.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("changing booking status: %w", err)
	}

	previous := b.Status
	b.Status = status
	s.logger.Info("booking status changed",
		zap.String("booking_id", id),
		zap.String("from", previous),
		zap.String("to", status),
	)
	if s.publisher != nil {
		s.publisher.BookingStatusChanged(*b, previous)
	}
	return b, nil
}

// Get returns a booking by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// List returns bookings matching the filter.
func (s *Service) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !models.ValidBookingStatus(filter.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	return s.bookings.List(ctx, filter)
}

// Delete removes a booking.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("booking deleted", zap.String("booking_id", id))
	if s.publisher != nil {
		s.publisher.BookingDeleted(id)
	}
	return nil
}
