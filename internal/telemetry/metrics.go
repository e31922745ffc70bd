// Package telemetry exposes Prometheus collectors for the journal
// service and the HTTP middleware that feeds them.
package telemetry

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TradesLogged counts journal entries accepted per user.
	TradesLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_trades_logged_total",
		Help: "Total number of trades logged",
	}, []string{"user"})

	// AlertsFired counts alerts returned by the detector.
	AlertsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_alerts_fired_total",
		Help: "Total number of alerts fired",
	}, []string{"type", "severity"})

	// RequestDuration observes HTTP handler latency per route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// WSClients gauges currently connected websocket clients.
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "journal_ws_clients",
		Help: "Number of connected websocket clients",
	})
)

// Middleware records request duration labelled by mux route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
