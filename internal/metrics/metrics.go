package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse outcomes used as the "outcome" label of LogsParsedTotal.
const (
	OutcomeOK        = "ok"
	OutcomeMinimal   = "minimal"
	OutcomeRejected  = "rejected"
	OutcomeOpenError = "open_error"
	OutcomeLimit     = "limit"
	OutcomeCancelled = "cancelled"
)

// MetricsRegistry holds all Prometheus metrics for flightdesk
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Log parsing Metrics
	LogsParsedTotal        *prometheus.CounterVec
	ParseDuration          prometheus.Histogram
	ParsesInFlight         prometheus.Gauge
	RecordsDecodedTotal    prometheus.Counter
	BytesSkippedTotal      prometheus.Counter
	UploadBytesTotal       prometheus.Counter
	AggregatorDegradations *prometheus.CounterVec

	// Chat Metrics
	ChatRequestsTotal  *prometheus.CounterVec
	LLMRequestDuration prometheus.Histogram
}

// NewMetricsRegistry creates every metric and registers it with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightdesk_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flightdesk_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),

		// Log parsing Metrics
		LogsParsedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_logs_parsed_total",
				Help: "Uploaded logs by parse outcome",
			},
			[]string{"outcome"},
		),
		ParseDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flightdesk_parse_duration_seconds",
				Help:    "Time spent decoding and summarizing one log",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		ParsesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flightdesk_parses_in_flight",
				Help: "Number of logs currently being parsed",
			},
		),
		RecordsDecodedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flightdesk_records_decoded_total",
				Help: "Total log records decoded",
			},
		),
		BytesSkippedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flightdesk_bytes_skipped_total",
				Help: "Total bytes skipped while resynchronizing log streams",
			},
		),
		UploadBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flightdesk_upload_bytes_total",
				Help: "Total bytes of uploaded logs",
			},
		),
		AggregatorDegradations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_aggregator_degradations_total",
				Help: "Summary metrics that fell back to their default, by aggregator",
			},
			[]string{"aggregator"},
		),

		// Chat Metrics
		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_chat_requests_total",
				Help: "Chat messages by outcome",
			},
			[]string{"outcome"},
		),
		LLMRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flightdesk_llm_request_duration_seconds",
				Help:    "Language model call latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}
}
