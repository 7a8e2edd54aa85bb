package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lodge-admin/backend/internal/storage/models"
)

// SettingsRepository provides data access for lodge settings.
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get returns the current settings. Missing or malformed keys keep their defaults.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	rows, err := r.DB().QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return settings, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("scanning setting: %w", err)
		}

		switch key {
		case models.SettingMinBookingLength:
			setInt(&settings.MinBookingLength, value)
		case models.SettingMaxBookingLength:
			setInt(&settings.MaxBookingLength, value)
		case models.SettingMaxGuestsPerBooking:
			setInt(&settings.MaxGuestsPerBooking, value)
		case models.SettingBreakfastPrice:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				settings.BreakfastPrice = f
			}
		}
	}

	return settings, rows.Err()
}

// Update stores every setting in a single transaction.
func (r *SettingsRepository) Update(ctx context.Context, settings models.Settings) error {
	values := map[string]string{
		models.SettingMinBookingLength:    strconv.Itoa(settings.MinBookingLength),
		models.SettingMaxBookingLength:    strconv.Itoa(settings.MaxBookingLength),
		models.SettingMaxGuestsPerBooking: strconv.Itoa(settings.MaxGuestsPerBooking),
		models.SettingBreakfastPrice:      strconv.FormatFloat(settings.BreakfastPrice, 'f', -1, 64),
	}

	return r.Transaction(ctx, func(tx *sql.Tx) error {
		for key, value := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
			`, key, value)
			if err != nil {
				return fmt.Errorf("updating setting %s: %w", key, err)
			}
		}
		return nil
	})
}

func setInt(dst *int, value string) {
	if n, err := strconv.Atoi(value); err == nil {
		*dst = n
	}
}
