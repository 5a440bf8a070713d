// Package metrics exposes Prometheus metrics about compilations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values for compilations_total.
const (
	ResultOK          = "ok"
	ResultSyntaxError = "syntax_error"
)

// Collector records one observation per compilation. It satisfies
// compiler.Recorder.
//
// Metrics:
//   - <ns>_compilations_total: compilations by result ("ok", "syntax_error")
//   - <ns>_syntax_errors_total: compilations that produced the error program
//   - <ns>_compile_duration_seconds: wall time of parse plus codegen
//   - <ns>_ir_lines: lines of IR emitted per compilation
type Collector struct {
	registry *prometheus.Registry

	compilationsTotal *prometheus.CounterVec
	syntaxErrorsTotal prometheus.Counter
	compileDuration   prometheus.Histogram
	irLines           prometheus.Histogram
}

// NewCollector creates the compilation metrics and registers them with
// registry. A nil registry gets a fresh private one.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "choosec"
	}

	c := &Collector{
		registry: registry,

		compilationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Total number of compilations by result",
			},
			[]string{"result"},
		),
		syntaxErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "syntax_errors_total",
				Help:      "Total number of compilations that stopped at a syntax error",
			},
		),
		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Duration of a single compilation in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		irLines: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ir_lines",
				Help:      "Number of IR lines emitted per compilation",
				Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
			},
		),
	}

	registry.MustRegister(
		c.compilationsTotal,
		c.syntaxErrorsTotal,
		c.compileDuration,
		c.irLines,
	)
	return c
}

// ObserveCompile records a finished compilation.
func (c *Collector) ObserveCompile(ok bool, d time.Duration, irLines int) {
	result := ResultOK
	if !ok {
		result = ResultSyntaxError
		c.syntaxErrorsTotal.Inc()
	}
	c.compilationsTotal.WithLabelValues(result).Inc()
	c.compileDuration.Observe(d.Seconds())
	c.irLines.Observe(float64(irLines))
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
