package models

import (
	"math"
	"time"
)

// Booking is a reservation of one cabin by one customer for a date range.
// CheckIn is inclusive and CheckOut exclusive.
type Booking struct {
	ID           string    `json:"id"`
	CabinID      string    `json:"cabinId"`
	CustomerID   string    `json:"customerId"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
	NumNights    int       `json:"numNights"`
	NumGuests    int       `json:"numGuests"`
	CabinPrice   float64   `json:"cabinPrice"`
	ExtrasPrice  float64   `json:"extrasPrice"`
	TotalPrice   float64   `json:"totalPrice"`
	Status       string    `json:"status"`
	Observations string    `json:"observations,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Booking status constants
const (
	BookingStatusUnconfirmed = "unconfirmed"
	BookingStatusConfirmed   = "confirmed"
	BookingStatusCheckedIn   = "checked-in"
	BookingStatusCheckedOut  = "checked-out"
	BookingStatusCancelled   = "cancelled"
)

// ActiveBookingStatuses are the statuses that keep a cabin occupied or promised.
var ActiveBookingStatuses = []string{
	BookingStatusUnconfirmed,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusUnconfirmed, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCheckedOut, BookingStatusCancelled:
		return true
	}
	return false
}

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Overlaps reports whether the booking's stay intersects [start, end).
// Ranges that only touch do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.CheckIn.Before(end) && b.CheckOut.After(start)
}

// BookingFilter narrows a booking listing. Empty fields do not filter.
type BookingFilter struct {
	Status     string
	CabinID    string
	CustomerID string
}
