// Package booking implements cabin availability, booking statistics and the
// booking lifecycle on top of the storage repositories.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/storage/models"
)

var (
	// ErrInvalidRange is returned for unparseable dates or an end not after the start.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrCabinUnavailable is returned when a stay overlaps another booking of the cabin.
	ErrCabinUnavailable = errors.New("cabin is already booked for these dates")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("unknown booking status")
	// ErrTooManyGuests is returned when a booking exceeds cabin or lodge capacity.
	ErrTooManyGuests = errors.New("too many guests")
	// ErrStayLength is returned when a stay is outside the configured length limits.
	ErrStayLength = errors.New("stay length outside allowed range")
)

// Store is the booking persistence used by the service.
type Store interface {
	CreateIfAvailable(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	FindOverlapping(ctx context.Context, cabinID string, start, end time.Time) ([]models.Booking, error)
	CountCheckInsBetween(ctx context.Context, start, end time.Time) (int, error)
	CountCheckOutsBetween(ctx context.Context, start, end time.Time) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// CabinStore looks up cabins for price snapshots and capacity checks.
type CabinStore interface {
	GetByID(ctx context.Context, id string) (*models.Cabin, error)
}

// SettingsStore provides the lodge booking rules.
type SettingsStore interface {
	Get(ctx context.Context) (models.Settings, error)
}

// Publisher receives booking lifecycle events.
type Publisher interface {
	BookingCreated(booking models.Booking)
	BookingStatusChanged(booking models.Booking, previousStatus string)
	BookingDeleted(id string)
}

// Service coordinates bookings.
type Service struct {
	bookings  Store
	cabins    CabinStore
	settings  SettingsStore
	publisher Publisher
	clock     clockwork.Clock
	location  *time.Location
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for "now" and "today".
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLocation sets the time zone that defines calendar days for statistics.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// WithPublisher sets the receiver of booking events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a booking service.
func NewService(bookings Store, cabins CabinStore, settings SettingsStore, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		bookings: bookings,
		cabins:   cabins,
		settings: settings,
		clock:    clockwork.NewRealClock(),
		location: time.Local,
		logger:   logger.Named("booking"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
