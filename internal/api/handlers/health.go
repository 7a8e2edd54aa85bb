package handlers

import (
	"net/http"
	"time"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status"`
	DBConnected      bool   `json:"dbConnected"`
	WebSocketClients int    `json:"websocketClients"`
	NextReconcileAt  string `json:"nextReconcileAt,omitempty"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB, hub *websocket.Hub, scheduler *customer.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}
		if hub != nil {
			response.WebSocketClients = hub.ClientCount()
		}
		if scheduler != nil {
			if next := scheduler.NextRun(); !next.IsZero() {
				response.NextReconcileAt = next.UTC().Format(time.RFC3339)
			}
		}

		code := http.StatusOK
		if !dbConnected {
			code = http.StatusServiceUnavailable
		}
		middleware.WriteJSON(w, code, response)
	}
}
