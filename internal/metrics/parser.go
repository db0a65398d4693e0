package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query parser Prometheus metrics.
var (
	ParserRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchd",
			Name:      "parser_requests_total",
			Help:      "Total number of model-backed parse requests",
		},
		[]string{"provider", "model", "status"},
	)

	ParserRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchd",
			Name:      "parser_request_duration_seconds",
			Help:      "Model-backed parse request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	ParserErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchd",
			Name:      "parser_errors_total",
			Help:      "Total model-backed parse errors",
		},
		[]string{"provider", "model", "error_type"},
	)
)

var parserMetricsRegistered bool

// RegisterParserMetrics registers Prometheus parser metrics. Must be called once from main.
func RegisterParserMetrics() {
	if parserMetricsRegistered {
		return
	}
	prometheus.MustRegister(ParserRequestsTotal)
	prometheus.MustRegister(ParserRequestDuration)
	prometheus.MustRegister(ParserErrorsTotal)
	parserMetricsRegistered = true
}
