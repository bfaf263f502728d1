package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Consumption metrics
	ConsumptionEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taru_consumption_events_total",
			Help: "Total consumption events recorded",
		},
	)

	ConsumptionAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taru_consumption_amount_total",
			Help: "Total amount consumed across all participants",
		},
	)

	Participants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taru_participants",
			Help: "Number of registered participants",
		},
	)

	// Session metrics
	SessionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taru_sessions_opened_total",
			Help: "Total cost-sharing sessions opened",
		},
	)

	SessionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taru_sessions_closed_total",
			Help: "Total cost-sharing sessions closed",
		},
	)

	SessionOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taru_session_open",
			Help: "1 while a session is open, 0 otherwise",
		},
	)

	SettlementPricePerUnit = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taru_settlement_price_per_unit",
			Help:    "Effective price per unit of closed sessions",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	RejectedOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taru_rejected_operations_total",
			Help: "Operations rejected by the accounting core",
		},
		[]string{"op", "kind"},
	)

	ArchiveErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taru_archive_errors_total",
			Help: "Closed settlements that could not be archived",
		},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taru_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"route", "method", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		ConsumptionEvents,
		ConsumptionAmount,
		Participants,
		SessionsOpened,
		SessionsClosed,
		SessionOpen,
		SettlementPricePerUnit,
		RejectedOperations,
		ArchiveErrors,
		HTTPRequests,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
