package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/lodge-admin/backend/internal/storage/models"
)

// Stats are the operational counters shown on the dashboard.
type Stats struct {
	TodayCheckIns  int `json:"todayCheckIns"`
	TodayCheckOuts int `json:"todayCheckOuts"`
	CheckedIn      int `json:"checkedIn"`
	Unconfirmed    int `json:"unconfirmed"`
}

// Stats counts today's arrivals and departures and the current checked-in
// and unconfirmed bookings. Arrivals skip cancelled bookings, departures
// do not.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	today, tomorrow := s.dayBounds()

	var (
		stats Stats
		err   error
	)
	if stats.TodayCheckIns, err = s.bookings.CountCheckInsBetween(ctx, today, tomorrow); err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	if stats.TodayCheckOuts, err = s.bookings.CountCheckOutsBetween(ctx, today, tomorrow); err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	if stats.CheckedIn, err = s.bookings.CountByStatus(ctx, models.BookingStatusCheckedIn); err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	if stats.Unconfirmed, err = s.bookings.CountByStatus(ctx, models.BookingStatusUnconfirmed); err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}

	return &stats, nil
}

// dayBounds returns local midnight today and the following midnight.
func (s *Service) dayBounds() (time.Time, time.Time) {
	now := s.clock.Now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	return today, today.AddDate(0, 0, 1)
}
