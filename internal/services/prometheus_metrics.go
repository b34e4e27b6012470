package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names understood by PrometheusMetrics.
const (
	MetricAuthenticationEvent  = "authentication_event"
	MetricTransactionAppended  = "transaction_appended"
	MetricTransactionDeleted   = "transaction_deleted"
	MetricQuickAdd             = "quick_add"
	MetricSummaryRecomputed    = "summary_recomputed"
	MetricSummaryNotification  = "summary_notification"
	MetricCircuitBreakerOpen   = "circuit_breaker.open"
	MetricCircuitBreakerClosed = "circuit_breaker.closed"
	MetricExcludedRecords      = "excluded_records"
	MetricScheduledRecompute   = "scheduled_recompute_users"
	MetricSummaryRecomputeTime = "summary_recompute"
	MetricQuickAddParseTime    = "quick_add_parse"
	MetricAggregationViewTime  = "aggregation_view"
)

type PrometheusMetrics struct {
	transactionsAppended      *prometheus.CounterVec
	transactionsDeleted       prometheus.Counter
	quickAddTotal             *prometheus.CounterVec
	quickAddDuration          prometheus.Histogram
	summariesRecomputed       *prometheus.CounterVec
	summaryRecomputeDuration  prometheus.Histogram
	summaryNotifications      *prometheus.CounterVec
	circuitBreakerState       *prometheus.GaugeVec
	excludedRecordsTotal      *prometheus.CounterVec
	aggregationDuration       prometheus.Histogram
	scheduledRecomputeUsers   *prometheus.GaugeVec
	authenticationEventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on the default registry. It
// must be called once per process.
func NewPrometheusMetrics() MetricsRecorderInterface {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith registers the collectors on reg.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		transactionsAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenzy_transactions_appended_total",
				Help: "Total number of transactions appended to daily logs",
			},
			[]string{"source"},
		),
		transactionsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "expenzy_transactions_deleted_total",
				Help: "Total number of transactions removed from daily logs",
			},
		),
		quickAddTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenzy_quick_add_total",
				Help: "Quick-add phrases by parse outcome",
			},
			[]string{"status"},
		),
		quickAddDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "expenzy_quick_add_parse_duration_microseconds",
				Help:    "Time spent parsing a quick-add phrase in microseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		summariesRecomputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenzy_summaries_recomputed_total",
				Help: "Weekly and monthly summary recomputations",
			},
			[]string{"kind", "status"},
		),
		summaryRecomputeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "expenzy_summary_recompute_duration_milliseconds",
				Help:    "Summary recomputation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		summaryNotifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenzy_summary_notifications_total",
				Help: "Log change notifications by delivery mode and outcome",
			},
			[]string{"mode", "status"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "expenzy_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		excludedRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenzy_excluded_records_total",
				Help: "Malformed records left out of aggregated views",
			},
			[]string{"view"},
		),
		aggregationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "expenzy_aggregation_duration_milliseconds",
				Help:    "Time spent building grouped and overview views in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		scheduledRecomputeUsers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "expenzy_scheduled_recompute_users",
				Help: "Users refreshed by the last scheduled summary run",
			},
			[]string{"kind"},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenzy_authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case MetricTransactionAppended:
		m.transactionsAppended.WithLabelValues(tags["source"]).Inc()
	case MetricTransactionDeleted:
		m.transactionsDeleted.Inc()
	case MetricQuickAdd:
		if status != "" {
			m.quickAddTotal.WithLabelValues(status).Inc()
		}
	case MetricSummaryRecomputed:
		m.summariesRecomputed.WithLabelValues(tags["kind"], status).Inc()
	case MetricSummaryNotification:
		m.summaryNotifications.WithLabelValues(tags["mode"], status).Inc()
	case MetricCircuitBreakerOpen:
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(float64(StateOpen))
	case MetricCircuitBreakerClosed:
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(float64(StateClosed))
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricSummaryRecomputeTime:
		m.summaryRecomputeDuration.Observe(float64(duration.Milliseconds()))
	case MetricQuickAddParseTime:
		m.quickAddDuration.Observe(float64(duration.Microseconds()))
	case MetricAggregationViewTime:
		m.aggregationDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) AddCounter(name string, delta float64, tags map[string]string) {
	if delta <= 0 {
		return
	}
	switch name {
	case MetricExcludedRecords:
		m.excludedRecordsTotal.WithLabelValues(tags["view"]).Add(delta)
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricScheduledRecompute:
		m.scheduledRecomputeUsers.WithLabelValues(tags["kind"]).Set(value)
	}
}
