package booking

import (
	"context"
	"fmt"
	"time"
)

// defaultWindowMonths is how far ahead availability looks when no end is given.
const defaultWindowMonths = 6

// Interval is a calendar-date range, start inclusive and end exclusive.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Availability lists the booked ranges of a cabin within a query range.
type Availability struct {
	CabinID          string     `json:"cabinId"`
	UnavailableDates []Interval `json:"unavailableDates"`
	QueryRange       Interval   `json:"queryRange"`
}

// Availability returns one interval per non-cancelled booking of the cabin
// that overlaps [start, end). Intervals are not merged. An empty start means
// now and an empty end means six months after the start.
func (s *Service) Availability(ctx context.Context, cabinID, startRaw, endRaw string) (*Availability, error) {
	start, end, err := s.queryRange(startRaw, endRaw)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindOverlapping(ctx, cabinID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching availability for cabin %s: %w", cabinID, err)
	}

	result := &Availability{
		CabinID:          cabinID,
		UnavailableDates: make([]Interval, 0, len(bookings)),
		QueryRange:       Interval{Start: FormatDate(start), End: FormatDate(end)},
	}
	for _, b := range bookings {
		result.UnavailableDates = append(result.UnavailableDates, Interval{
			Start: FormatDate(b.CheckIn),
			End:   FormatDate(b.CheckOut),
		})
	}

	return result, nil
}

func (s *Service) queryRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start := s.clock.Now()
	if startRaw != "" {
		t, err := ParseDate(startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	end := start.AddDate(0, defaultWindowMonths, 0)
	if endRaw != "" {
		t, err := ParseDate(endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end must be after start", ErrInvalidRange)
	}
	return start, end, nil
}
