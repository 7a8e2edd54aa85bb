package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/booking"
)

// GetAvailability lists the booked date ranges of a cabin.
// Query parameters startDate and endDate are optional.
func GetAvailability(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cabinID := mux.Vars(r)["id"]
		q := r.URL.Query()

		availability, err := bookings.Availability(r.Context(), cabinID, q.Get("startDate"), q.Get("endDate"))
		if err != nil {
			if errors.Is(err, booking.ErrInvalidRange) {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
				return
			}
			logger.Error("fetching availability", zap.String("cabin_id", cabinID), zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to fetch availability")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, availability)
	}
}

// GetBookingStats returns today's arrivals and departures and the current
// checked-in and unconfirmed counts.
func GetBookingStats(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := bookings.Stats(r.Context())
		if err != nil {
			logger.Error("computing booking stats", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to fetch booking stats")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, stats)
	}
}
