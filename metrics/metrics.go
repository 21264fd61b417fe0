package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adpay"

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

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "registrations_total",
			Help:      "Accounts registered, by tier.",
		},
		[]string{"tier"},
	)

	activations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "activations_total",
			Help:      "Accounts activated by an admin, by tier.",
		},
		[]string{"tier"},
	)

	adViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ads",
			Name:      "views_total",
			Help:      "Completed ad views, by tier.",
		},
		[]string{"tier"},
	)

	adEarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ads",
			Name:      "earnings_total",
			Help:      "Currency credited for ad views, by tier.",
		},
		[]string{"tier"},
	)

	withdrawals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "withdrawals",
			Name:      "events_total",
			Help:      "Withdrawal lifecycle events (requested, completed, rejected).",
		},
		[]string{"event"},
	)

	withdrawalAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "withdrawals",
			Name:      "amount_total",
			Help:      "Currency moved by withdrawal lifecycle events.",
		},
		[]string{"event"},
	)

	tokensGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "generated_total",
			Help:      "Registration tokens generated, by tier.",
		},
		[]string{"tier"},
	)

	tokensPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "purged_total",
			Help:      "Expired unused tokens removed by the scheduler.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		registrations,
		activations,
		adViews,
		adEarnings,
		withdrawals,
		withdrawalAmount,
		tokensGenerated,
		tokensPurged,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func IncInFlight() { httpInFlight.Inc() }
func DecInFlight() { httpInFlight.Dec() }

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordRegistration(tier string) {
	registrations.WithLabelValues(tier).Inc()
}

func RecordActivation(tier string) {
	activations.WithLabelValues(tier).Inc()
}

func RecordAdView(tier string, earnings int64) {
	adViews.WithLabelValues(tier).Inc()
	adEarnings.WithLabelValues(tier).Add(float64(earnings))
}

func RecordWithdrawal(event string, amount int64) {
	withdrawals.WithLabelValues(event).Inc()
	withdrawalAmount.WithLabelValues(event).Add(float64(amount))
}

func RecordTokensGenerated(tier string, n int) {
	tokensGenerated.WithLabelValues(tier).Add(float64(n))
}

func RecordTokensPurged(n int64) {
	tokensPurged.Add(float64(n))
}
