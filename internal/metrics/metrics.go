package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "diagnosia"

// Registry holds every metric the API exposes on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)

	// Bookings counts booking attempts by outcome (booked, no_slots, rejected, error).
	Bookings = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Appointment booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BannerActivations = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "banner_activations_total",
			Help:      "Completed banner activations",
		},
	)

	ReportsFiled = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_filed_total",
			Help:      "Reports filed against appointments",
		},
	)

	// ExternalCalls counts payment and upload provider calls by outcome.
	ExternalCalls = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_calls_total",
			Help:      "Calls to external providers by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Outcome maps an error to a label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
