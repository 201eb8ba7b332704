package extensions

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	scoped "github.com/scoped-fn/scoped-go"
)

// MetricsExtension exports Prometheus metrics for producer invocations and
// release failures. Cache hits never reach the extension, so the counters
// measure actual producer work.
type MetricsExtension struct {
	scoped.BaseExtension

	acquires      *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	releaseErrors prometheus.Counter
}

// NewMetricsExtension creates a metrics extension and registers its
// collectors with reg.
func NewMetricsExtension(reg prometheus.Registerer) (*MetricsExtension, error) {
	m := &MetricsExtension{
		BaseExtension: scoped.NewBaseExtension("metrics"),
		acquires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoped_producer_acquires_total",
			Help: "Producer invocations, by producer and operation kind.",
		}, []string{"producer", "kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoped_producer_failures_total",
			Help: "Failed producer invocations, by producer and operation kind.",
		}, []string{"producer", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoped_producer_duration_seconds",
			Help:    "Producer invocation latency, by producer.",
			Buckets: prometheus.DefBuckets,
		}, []string{"producer"}),
		releaseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoped_release_errors_total",
			Help: "Release failures during scope unwind.",
		}),
	}

	collectors := []prometheus.Collector{m.acquires, m.failures, m.duration, m.releaseErrors}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (e *MetricsExtension) WrapAcquire(ctx context.Context, next func() (any, error), op *scoped.Operation) (any, error) {
	start := time.Now()
	result, err := next()

	name := op.Producer.Name()
	kind := string(op.Kind)

	e.acquires.WithLabelValues(name, kind).Inc()
	e.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		e.failures.WithLabelValues(name, kind).Inc()
	}

	return result, err
}

func (e *MetricsExtension) OnReleaseError(relErr *scoped.ReleaseError) bool {
	e.releaseErrors.Inc()
	return false
}
