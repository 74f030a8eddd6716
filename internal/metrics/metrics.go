// Package metrics exposes the Prometheus collectors for the streak service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bm_streak"

// Check-in outcomes
const (
	CheckInFirst       = "first"
	CheckInSameDay     = "same_day"
	CheckInConsecutive = "consecutive"
	CheckInReset       = "reset"
)

// Send outcomes
const (
	SendSent                 = "sent"
	SendInvalidInput         = "invalid_input"
	SendSenderNotEligible    = "sender_not_eligible"
	SendRecipientNotEligible = "recipient_not_eligible"
	SendLimitReached         = "limit_reached"
	SendError                = "error"
)

// Notification statuses
const (
	NotificationDelivered = "delivered"
	NotificationSkipped   = "skipped"
	NotificationDropped   = "dropped"
	NotificationFailed    = "failed"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	checkIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Check-ins by streak transition.",
		},
		[]string{"outcome"},
	)

	milestones = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_total",
			Help:      "Milestone streak values reached.",
		},
		[]string{"milestone"},
	)

	sends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Send attempts by outcome.",
		},
		[]string{"outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification dispatches by status.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		checkIns,
		milestones,
		sends,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordCheckIn counts one check-in outcome.
func RecordCheckIn(outcome string) {
	checkIns.WithLabelValues(outcome).Inc()
}

// RecordMilestone counts one milestone reached.
func RecordMilestone(milestone int) {
	milestones.WithLabelValues(strconv.Itoa(milestone)).Inc()
}

// RecordSend counts one send attempt outcome.
func RecordSend(outcome string) {
	sends.WithLabelValues(outcome).Inc()
}

// RecordNotification counts one notification dispatch status.
func RecordNotification(status string) {
	notifications.WithLabelValues(status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath keeps the label set bounded: unknown paths collapse to "other".
func canonicalPath(raw string) string {
	switch {
	case raw == "/health":
		return raw
	case strings.HasPrefix(raw, "/api/") && !strings.Contains(strings.TrimPrefix(raw, "/api/"), "/"):
		return raw
	default:
		return "other"
	}
}
