// Package metrics holds the Prometheus collectors of the forecast API
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons recorded on FitFailures
const (
	ReasonMalformed   = "malformed_record"
	ReasonEmpty       = "empty_input"
	ReasonDivergence  = "fit_divergence"
	ReasonTimeout     = "timeout"
	ReasonCanceled    = "canceled"
	ReasonRateLimited = "rate_limited"
	ReasonInternal    = "internal"
)

// Metrics holds all Prometheus collectors for the server
type Metrics struct {
	Requests      *prometheus.CounterVec
	FitFailures   *prometheus.CounterVec
	FitDuration   prometheus.Histogram
	FitIterations prometheus.Histogram
	Observations  prometheus.Histogram
	ConfigReloads prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry creates the collectors and registers them on reg. gatherer backs Handler.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weibull_requests_total",
				Help: "Total number of forecast requests by response code",
			},
			[]string{"code"},
		),
		FitFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weibull_fit_failures_total",
				Help: "Number of failed forecast requests by reason",
			},
			[]string{"reason"},
		),
		FitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "weibull_fit_duration_seconds",
			Help:    "Wall-clock time to fit and forecast a series",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		FitIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "weibull_fit_iterations",
			Help:    "Solver iterations used by successful fits",
			Buckets: prometheus.LinearBuckets(0, 20, 11),
		}),
		Observations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "weibull_observations",
			Help:    "Number of observations per forecast request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ConfigReloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "weibull_config_reloads_total",
			Help: "Number of successful configuration reloads",
		}),
		gatherer: gatherer,
	}
}

// Handler serves the Prometheus exposition of the collectors
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
