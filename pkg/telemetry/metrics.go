package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sakinah-dev/sakinah/pkg/store"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sakinah").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
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
		Namespace: "sakinah",
		Subsystem: "store",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records store commits in Prometheus.
//
// Metrics collected (default namespace and subsystem):
//   - sakinah_store_commits_total: commits by store, action and status
//   - sakinah_store_field_changes_total: changed fields by store and field
//   - sakinah_store_notifications_total: subscriber callbacks and listeners reached
//   - sakinah_store_commit_duration_seconds: commit duration by store
type Metrics struct {
	commits       *prometheus.CounterVec
	fieldChanges  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

var _ store.Observer = (*Metrics)(nil)

// NewMetrics registers the store metrics and returns an observer feeding
// them. Registering twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		commits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of store commits",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "action", "status"}),

		fieldChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "field_changes_total",
			Help:        "Total number of field value changes",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "field"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of subscriber and listener notifications",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Store commit duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),
	}
}

// ObserveCommit implements store.Observer.
func (m *Metrics) ObserveCommit(_ context.Context, c store.Commit) {
	status := commitStatus(c)
	m.commits.WithLabelValues(c.Store, c.Action, status).Inc()
	m.duration.WithLabelValues(c.Store).Observe(c.Duration.Seconds())
	if c.Err != nil {
		return
	}
	for _, field := range c.Changed {
		m.fieldChanges.WithLabelValues(c.Store, field).Inc()
	}
	if c.Notified > 0 {
		m.notifications.WithLabelValues(c.Store).Add(float64(c.Notified))
	}
}

// commitStatus is "error", "noop" for a commit that changed nothing, or "ok".
func commitStatus(c store.Commit) string {
	switch {
	case c.Err != nil:
		return "error"
	case len(c.Changed) == 0:
		return "noop"
	default:
		return "ok"
	}
}
