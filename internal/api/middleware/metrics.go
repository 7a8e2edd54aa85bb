package middleware

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/lodge-admin/backend/internal/metrics"
)

// Metrics records request counts and latency per route template.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snoop := httpsnoop.CaptureMetrics(next, w, r)

			route := routeTemplate(r)
			m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(snoop.Code)).Inc()
			m.RequestDuration.WithLabelValues(route, r.Method).Observe(snoop.Duration.Seconds())
		})
	}
}

// routeTemplate keeps label cardinality bounded by using the matched
// pattern instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
