package models

// Settings holds lodge-wide booking rules.
type Settings struct {
	MinBookingLength    int     `json:"minBookingLength"`
	MaxBookingLength    int     `json:"maxBookingLength"`
	MaxGuestsPerBooking int     `json:"maxGuestsPerBooking"`
	BreakfastPrice      float64 `json:"breakfastPrice"`
}

// Setting keys as stored in the settings table.
const (
	SettingMinBookingLength    = "min_booking_length"
	SettingMaxBookingLength    = "max_booking_length"
	SettingMaxGuestsPerBooking = "max_guests_per_booking"
	SettingBreakfastPrice      = "breakfast_price"
)

// DefaultSettings returns the values seeded by the initial migration.
func DefaultSettings() Settings {
	return Settings{
		MinBookingLength:    1,
		MaxBookingLength:    90,
		MaxGuestsPerBooking: 10,
		BreakfastPrice:      15,
	}
}
