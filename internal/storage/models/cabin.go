// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Cabin is a rentable unit of the lodge.
type Cabin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"`
	Image       string    `json:"image,omitempty"`
	Amenities   []string  `json:"amenities"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cabin status constants
const (
	CabinStatusAvailable   = "available"
	CabinStatusMaintenance = "maintenance"
	CabinStatusInactive    = "inactive"
)

// NightlyRate returns the price a new booking is charged per night.
func (c *Cabin) NightlyRate() float64 {
	return c.Price - c.Discount
}

// ValidDiscount reports whether the discount is strictly below the price.
func (c *Cabin) ValidDiscount() bool {
	return c.Discount >= 0 && c.Discount < c.Price
}
