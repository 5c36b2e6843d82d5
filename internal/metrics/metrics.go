package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors on a private registry so tests can
// build as many instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	datasetRows     *prometheus.GaugeVec
	trainingRows    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "housing_api_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "housing_api_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{0.001, 0.005, 0.02, 0.1, 0.3, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "housing_api_predictions_total",
				Help: "Price predictions by outcome",
			},
			[]string{"outcome"},
		),
		datasetRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "housing_api_dataset_rows",
				Help: "Rows loaded per dataset at startup",
			},
			[]string{"dataset"},
		),
		trainingRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "housing_api_training_rows",
				Help: "Complete rows the regression was fitted on",
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.predictions,
		m.datasetRows,
		m.trainingRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Prediction outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeUnknownLocality = "unknown_locality"
	OutcomeYearNotFound    = "year_not_found"
	OutcomeError           = "error"
)

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObservePrediction(outcome string) {
	m.predictions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetDatasetRows(counts map[string]int) {
	for dataset, rows := range counts {
		m.datasetRows.WithLabelValues(dataset).Set(float64(rows))
	}
}

func (m *Metrics) SetTrainingRows(rows int) {
	m.trainingRows.Set(float64(rows))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
