package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/storage/models"
)

// SettingsRequest is the body of a settings update.
type SettingsRequest struct {
	MinBookingLength    int     `json:"minBookingLength" validate:"required,min=1"`
	MaxBookingLength    int     `json:"maxBookingLength" validate:"required,gtefield=MinBookingLength"`
	MaxGuestsPerBooking int     `json:"maxGuestsPerBooking" validate:"required,min=1"`
	BreakfastPrice      float64 `json:"breakfastPrice" validate:"gte=0"`
}

// GetSettings returns the lodge settings.
func GetSettings(settings *storage.SettingsRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := settings.Get(r.Context())
		if err != nil {
			writeServiceError(w, logger, err, "Failed to query settings")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, s)
	}
}

// UpdateSettings replaces the lodge settings.
func UpdateSettings(settings *storage.SettingsRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if !decodeBody(w, r, &req) {
			return
		}

		s := models.Settings(req)
		if err := settings.Update(r.Context(), s); err != nil {
			writeServiceError(w, logger, err, "Failed to update settings")
			return
		}

		logger.Info("settings updated",
			zap.Int("min_booking_length", s.MinBookingLength),
			zap.Int("max_booking_length", s.MaxBookingLength),
		)
		middleware.WriteJSON(w, http.StatusOK, s)
	}
}
