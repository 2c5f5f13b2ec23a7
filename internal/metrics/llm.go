package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "raseed",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	QueryFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "query_fallbacks_total",
			Help:      "Pipeline stages that fell back to a degraded result",
		},
		[]string{"stage"}, // "filter" / "answer"
	)

	QueryDroppedClausesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "query_dropped_clauses_total",
			Help:      "Filter clauses dropped as unrecognized or untranslatable",
		},
		[]string{"stage"}, // "parse" / "execute"
	)

	SecurityInvariantViolationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "security_invariant_violations_total",
			Help:      "Filters that reached the executor without the owner clause",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "raseed",
			Name:      "sessions_active",
			Help:      "Currently registered query sessions",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(QueryFallbacksTotal)
	prometheus.MustRegister(QueryDroppedClausesTotal)
	prometheus.MustRegister(SecurityInvariantViolationsTotal)
	prometheus.MustRegister(SessionsActive)
	queryMetricsRegistered = true
}
