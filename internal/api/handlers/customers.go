package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/storage"
)

// ListCustomers returns every customer aggregate.
func ListCustomers(customers *storage.CustomerRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := customers.List(r.Context())
		if err != nil {
			writeServiceError(w, logger, err, "Failed to list customers")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, list)
	}
}

// GetCustomer returns one customer aggregate.
func GetCustomer(customers *storage.CustomerRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := customers.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, logger, err, "Failed to get customer")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, c)
	}
}

// ReconcileCustomers rebuilds the customer aggregates now. Per-customer
// failures are reported in the result with status 207.
func ReconcileCustomers(scheduler *customer.Scheduler, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := scheduler.RunNow(r.Context())
		if err != nil {
			if len(result.Failed) > 0 {
				logger.Warn("reconcile finished with failures", zap.Strings("failed", result.Failed), zap.Error(err))
				middleware.WriteJSON(w, http.StatusMultiStatus, result)
				return
			}
			logger.Error("reconciling customers", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to reconcile customers")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, result)
	}
}
