package fiber

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/didact/internal/errors"
)

// MetricsConfig configures the runtime's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "didact").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for slice and commit duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the runtime's Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "didact",
		// Slices are bounded by a frame budget; 50µs to ~100ms.
		Buckets:  prometheus.ExponentialBuckets(0.00005, 2, 12),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics records work loop and commit activity. A nil *Metrics records
// nothing.
type Metrics struct {
	unitsOfWork    prometheus.Counter
	slices         prometheus.Counter
	yields         prometheus.Counter
	commits        prometheus.Counter
	effects        *prometheus.CounterVec
	aborts         *prometheus.CounterVec
	sliceDuration  prometheus.Histogram
	commitDuration prometheus.Histogram
}

// NewMetrics registers the runtime metrics.
//
// Metrics collected:
//   - didact_units_of_work_total: fibers processed
//   - didact_slices_total: work loop slices that did work
//   - didact_yields_total: slices that yielded with work left
//   - didact_commits_total: successful commits
//   - didact_effects_total: host effects applied, by effect
//   - didact_render_aborts_total: aborted renders, by error code
//   - didact_slice_duration_seconds / didact_commit_duration_seconds
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		})
	}

	return &Metrics{
		unitsOfWork: counter("units_of_work_total", "Total number of fibers processed"),
		slices:      counter("slices_total", "Total number of work loop slices that did work"),
		yields:      counter("yields_total", "Total number of slices that yielded with work left"),
		commits:     counter("commits_total", "Total number of successful commits"),
		effects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of host effects applied at commit",
			ConstLabels: config.ConstLabels,
		}, []string{"effect"}),
		aborts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_aborts_total",
			Help:        "Total number of aborted renders by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),
		sliceDuration:  histogram("slice_duration_seconds", "Work loop slice duration in seconds"),
		commitDuration: histogram("commit_duration_seconds", "Commit duration in seconds"),
	}
}

func (m *Metrics) observeSlice(units int, yielded bool, d time.Duration) {
	if m == nil || units == 0 {
		return
	}
	m.slices.Inc()
	m.unitsOfWork.Add(float64(units))
	if yielded {
		m.yields.Inc()
	}
	m.sliceDuration.Observe(d.Seconds())
}

func (m *Metrics) observeCommit(info CommitInfo) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.effects.WithLabelValues(EffectPlacement.String()).Add(float64(info.Placements))
	m.effects.WithLabelValues(EffectUpdate.String()).Add(float64(info.Updates))
	m.effects.WithLabelValues(EffectDeletion.String()).Add(float64(info.Deletions))
	m.commitDuration.Observe(info.Duration.Seconds())
}

func (m *Metrics) observeAbort(err error) {
	if m == nil {
		return
	}
	code := errors.Code(err)
	if code == "" {
		code = "unknown"
	}
	m.aborts.WithLabelValues(code).Inc()
}
