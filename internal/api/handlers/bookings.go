package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/booking"
	"github.com/lodge-admin/backend/internal/storage/models"
)

// CreateBookingRequest is the body of a booking create request. Dates are
// YYYY-MM-DD or RFC 3339 timestamps.
type CreateBookingRequest struct {
	CabinID      string `json:"cabinId" validate:"required"`
	CustomerID   string `json:"customerId"`
	CheckIn      string `json:"checkIn" validate:"required"`
	CheckOut     string `json:"checkOut" validate:"required"`
	NumGuests    int    `json:"numGuests" validate:"required,min=1"`
	HasBreakfast bool   `json:"hasBreakfast"`
	Observations string `json:"observations" validate:"max=1000"`
	Status       string `json:"status" validate:"omitempty,oneof=unconfirmed confirmed"`
}

// UpdateBookingRequest is the body of a booking edit request.
type UpdateBookingRequest struct {
	CheckIn      string `json:"checkIn" validate:"required"`
	CheckOut     string `json:"checkOut" validate:"required"`
	NumGuests    int    `json:"numGuests" validate:"required,min=1"`
	HasBreakfast bool   `json:"hasBreakfast"`
	Observations string `json:"observations" validate:"max=1000"`
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListBookings returns bookings, newest first, filtered by the status,
// cabinId and customerId query parameters.
func ListBookings(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := models.BookingFilter{
			Status:     q.Get("status"),
			CabinID:    q.Get("cabinId"),
			CustomerID: q.Get("customerId"),
		}

		list, err := bookings.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, logger, err, "Failed to list bookings")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, list)
	}
}

// GetBooking returns a single booking.
func GetBooking(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := bookings.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, logger, err, "Failed to get booking")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, b)
	}
}

// CreateBooking books a cabin for the authenticated customer. Without an
// identity subject the body's customerId is used.
func CreateBooking(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if !decodeBody(w, r, &req) {
			return
		}

		customerID, ok := middleware.SubjectFrom(r.Context())
		if !ok {
			customerID = req.CustomerID
		}
		if customerID == "" {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "A customer identity is required")
			return
		}

		checkIn, err := booking.ParseDate(req.CheckIn)
		if err != nil {
			writeServiceError(w, logger, err, "Failed to create booking")
			return
		}
		checkOut, err := booking.ParseDate(req.CheckOut)
		if err != nil {
			writeServiceError(w, logger, err, "Failed to create booking")
			return
		}

		b, err := bookings.Create(r.Context(), booking.CreateInput{
			CabinID:      req.CabinID,
			CustomerID:   customerID,
			CheckIn:      checkIn,
			CheckOut:     checkOut,
			NumGuests:    req.NumGuests,
			HasBreakfast: req.HasBreakfast,
			Observations: req.Observations,
			Status:       req.Status,
		})
		if err != nil {
			writeServiceError(w, logger, err, "Failed to create booking")
			return
		}
		middleware.WriteJSON(w, http.StatusCreated, b)
	}
}

// UpdateBooking changes the stay of a booking.
func UpdateBooking(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateBookingRequest
		if !decodeBody(w, r, &req) {
			return
		}

		checkIn, err := booking.ParseDate(req.CheckIn)
		if err != nil {
			writeServiceError(w, logger, err, "Failed to update booking")
			return
		}
		checkOut, err := booking.ParseDate(req.CheckOut)
		if err != nil {
			writeServiceError(w, logger, err, "Failed to update booking")
			return
		}

		b, err := bookings.Update(r.Context(), mux.Vars(r)["id"], booking.UpdateInput{
			CheckIn:      checkIn,
			CheckOut:     checkOut,
			NumGuests:    req.NumGuests,
			HasBreakfast: req.HasBreakfast,
			Observations: req.Observations,
		})
		if err != nil {
			writeServiceError(w, logger, err, "Failed to update booking")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, b)
	}
}

// ChangeBookingStatus moves a booking to the status named in the body.
func ChangeBookingStatus(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StatusRequest
		if !decodeBody(w, r, &req) {
			return
		}
		changeStatus(w, r, bookings, logger, req.Status)
	}
}

// SetBookingStatus returns a handler that moves a booking to a fixed status,
// as used by the check-in, check-out and cancel shortcuts.
func SetBookingStatus(bookings *booking.Service, logger *zap.Logger, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changeStatus(w, r, bookings, logger, status)
	}
}

func changeStatus(w http.ResponseWriter, r *http.Request, bookings *booking.Service, logger *zap.Logger, status string) {
	b, err := bookings.ChangeStatus(r.Context(), mux.Vars(r)["id"], status)
	if err != nil {
		writeServiceError(w, logger, err, "Failed to change booking status")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, b)
}

// DeleteBooking removes a booking.
func DeleteBooking(bookings *booking.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := bookings.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, logger, err, "Failed to delete booking")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
