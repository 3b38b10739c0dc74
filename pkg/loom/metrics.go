package loom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures runtime metrics collection.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "runtime").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to register with.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration histogram buckets.
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

// Metrics records runtime activity in Prometheus. A nil *Metrics is valid
// and records nothing, so the runtime never checks before recording.
//
// Metrics collected:
//   - loom_runtime_renders_total: Counter of component renders
//   - loom_runtime_render_duration_seconds: Histogram of render duration
//   - loom_runtime_patches_emitted_total: Counter of patches committed
//   - loom_runtime_effects_run_total: Counter of effect body executions
//   - loom_runtime_render_storms_total: Counter of aborted drains
//   - loom_runtime_render_queue_depth: Gauge of components awaiting render
//   - loom_runtime_components_mounted: Gauge of registered instances
type Metrics struct {
	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	patches        prometheus.Counter
	effects        prometheus.Counter
	storms         prometheus.Counter
	queueDepth     prometheus.Gauge
	mounted        prometheus.Gauge
}

// NewMetrics registers the runtime metrics and returns the recorder.
// Registering twice against the same registry panics, per promauto; use
// WithRegistry to isolate runtimes that coexist in one process.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "loom",
		Subsystem: "runtime",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: cfg.ConstLabels,
		}),
		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		patches: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "patches_emitted_total",
			Help:        "Total number of patches committed to the backend",
			ConstLabels: cfg.ConstLabels,
		}),
		effects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "effects_run_total",
			Help:        "Total number of effect body executions",
			ConstLabels: cfg.ConstLabels,
		}),
		storms: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_storms_total",
			Help:        "Total number of drains aborted at the pass cap",
			ConstLabels: cfg.ConstLabels,
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_queue_depth",
			Help:        "Number of components waiting for a render",
			ConstLabels: cfg.ConstLabels,
		}),
		mounted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "components_mounted",
			Help:        "Number of registered component instances",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) renderObserved(d time.Duration, patches int) {
	if m == nil {
		return
	}
	m.renders.Inc()
	m.renderDuration.Observe(d.Seconds())
	if patches > 0 {
		m.patches.Add(float64(patches))
	}
}

func (m *Metrics) effectRun() {
	if m == nil {
		return
	}
	m.effects.Inc()
}

func (m *Metrics) stormInc() {
	if m == nil {
		return
	}
	m.storms.Inc()
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) mountedAdd(delta float64) {
	if m == nil {
		return
	}
	m.mounted.Add(delta)
}
