// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/netip"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/handlers"
	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/booking"
	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/metrics"
	"github.com/lodge-admin/backend/internal/ratelimit"
	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/storage/models"
	"github.com/lodge-admin/backend/internal/websocket"
)

// Deps are the services the router dispatches to. Metrics and Limiter are
// optional.
type Deps struct {
	DB        *storage.DB
	Cabins    *storage.CabinRepository
	Customers *storage.CustomerRepository
	Settings  *storage.SettingsRepository
	Bookings  *booking.Service
	Scheduler *customer.Scheduler
	Hub       *websocket.Hub
	Metrics   *metrics.Metrics
	Limiter   ratelimit.Limiter

	// TrustedProxies are the peers allowed to set X-Forwarded-For.
	TrustedProxies []netip.Prefix

	// IdentityHeader carries the subject id set by the identity gateway.
	IdentityHeader string
	Logger         *zap.Logger
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	logger := d.Logger.Named("api")

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging(logger.Named("http")))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	}
	r.Use(middleware.ErrorRecovery(logger))

	// Health is matched ahead of the /api prefix so load balancer checks
	// never count against the rate limit.
	r.HandleFunc("/api/health", handlers.HealthCheck(d.DB, d.Hub, d.Scheduler)).Methods("GET")

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter, d.TrustedProxies, d.Metrics, logger))
	}
	if d.IdentityHeader != "" {
		api.Use(middleware.Identity(d.IdentityHeader))
	}

	api.HandleFunc("/ws", handlers.WebSocketUpgrade(d.Hub, logger)).Methods("GET")

	// Cabin endpoints
	api.HandleFunc("/cabins", handlers.ListCabins(d.Cabins, logger)).Methods("GET")
	api.HandleFunc("/cabins", handlers.CreateCabin(d.Cabins, logger)).Methods("POST")
	api.HandleFunc("/cabins/discount", handlers.BulkDiscount(d.Cabins, logger)).Methods("POST")
	api.HandleFunc("/cabins/{id}", handlers.GetCabin(d.Cabins, logger)).Methods("GET")
	api.HandleFunc("/cabins/{id}", handlers.UpdateCabin(d.Cabins, logger)).Methods("PUT")
	api.HandleFunc("/cabins/{id}", handlers.DeleteCabin(d.Cabins, logger)).Methods("DELETE")
	api.HandleFunc("/cabins/{id}/availability", handlers.GetAvailability(d.Bookings, logger)).Methods("GET")

	// Booking endpoints; stats is registered before {id} so it is not taken as an id.
	api.HandleFunc("/bookings/stats", handlers.GetBookingStats(d.Bookings, logger)).Methods("GET")
	api.HandleFunc("/bookings", handlers.ListBookings(d.Bookings, logger)).Methods("GET")
	api.HandleFunc("/bookings", handlers.CreateBooking(d.Bookings, logger)).Methods("POST")
	api.HandleFunc("/bookings/{id}", handlers.GetBooking(d.Bookings, logger)).Methods("GET")
	api.HandleFunc("/bookings/{id}", handlers.UpdateBooking(d.Bookings, logger)).Methods("PUT")
	api.HandleFunc("/bookings/{id}", handlers.DeleteBooking(d.Bookings, logger)).Methods("DELETE")
	api.HandleFunc("/bookings/{id}/status", handlers.ChangeBookingStatus(d.Bookings, logger)).Methods("PATCH")
	api.HandleFunc("/bookings/{id}/check-in", handlers.SetBookingStatus(d.Bookings, logger, models.BookingStatusCheckedIn)).Methods("POST")
	api.HandleFunc("/bookings/{id}/check-out", handlers.SetBookingStatus(d.Bookings, logger, models.BookingStatusCheckedOut)).Methods("POST")
	api.HandleFunc("/bookings/{id}/cancel", handlers.SetBookingStatus(d.Bookings, logger, models.BookingStatusCancelled)).Methods("POST")

	// Customer endpoints
	api.HandleFunc("/customers", handlers.ListCustomers(d.Customers, logger)).Methods("GET")
	api.HandleFunc("/customers/reconcile", handlers.ReconcileCustomers(d.Scheduler, logger)).Methods("POST")
	api.HandleFunc("/customers/{id}", handlers.GetCustomer(d.Customers, logger)).Methods("GET")

	// Settings endpoints
	api.HandleFunc("/settings", handlers.GetSettings(d.Settings, logger)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettings(d.Settings, logger)).Methods("PUT")

	return r
}
