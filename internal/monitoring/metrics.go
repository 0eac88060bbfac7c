package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK labels a calculation that produced a result. Failures are
// labeled with their error kind.
const OutcomeOK = "ok"

var (
	calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_calculator_calculations_total",
			Help: "Total number of calculations by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	leverageRequired = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dca_calculator_leverage",
			Help:    "Distribution of computed leverage",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 125},
		},
		[]string{"variant"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dca_calculator_request_duration_seconds",
			Help:    "HTTP request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "code"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_calculator_exports_total",
			Help: "Total number of report exports by format",
		},
		[]string{"format"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_calculator_errors_total",
			Help: "Total number of internal errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(calculationsTotal)
	prometheus.MustRegister(leverageRequired)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(exportsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler serves the Prometheus metrics endpoint
type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{handler: promhttp.Handler()}
}

func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// RecordCalculation counts a successful calculation and observes its leverage
func RecordCalculation(variant string, leverage float64) {
	calculationsTotal.WithLabelValues(variant, OutcomeOK).Inc()
	leverageRequired.WithLabelValues(variant).Observe(leverage)
}

// RecordRejection counts a calculation rejected with the given error kind
func RecordRejection(variant, kind string) {
	calculationsTotal.WithLabelValues(variant, kind).Inc()
}

// ObserveRequest records the latency of one HTTP request
func ObserveRequest(endpoint, code string, elapsed time.Duration) {
	requestDuration.WithLabelValues(endpoint, code).Observe(elapsed.Seconds())
}

// RecordExport counts a report export
func RecordExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

// RecordError records an internal error
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
