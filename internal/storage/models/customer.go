package models

import (
	"time"
)

// Customer is the denormalized per-customer aggregate rebuilt from bookings.
// ID is the identity provider subject id.
type Customer struct {
	ID              string     `json:"id"`
	TotalBookings   int        `json:"totalBookings"`
	TotalSpent      float64    `json:"totalSpent"`
	LastBookingDate *time.Time `json:"lastBookingDate,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
