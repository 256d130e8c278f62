package metrics

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Options given empty or invalid values leave
// the defaults in place.
type Option func(*Manager)

// Settings mirrors the metrics_* configuration keys.
type Settings struct {
	Enabled   bool
	Namespace string
	Subsystem string
	Prefix    string
	Buckets   []float64
	Labels    map[string]string
	Refresh   time.Duration
}

// Options expands s into manager options.
func (s Settings) Options() []Option {
	return []Option{
		WithMetricsEnabled(s.Enabled),
		WithNames(s.Namespace, s.Subsystem),
		WithMetricPrefix(s.Prefix),
		WithHistogramBuckets(s.Buckets),
		WithConstLabels(s.Labels),
		WithRefreshInterval(s.Refresh),
	}
}

// WithNames sets the namespace and subsystem parts of every metric name.
func WithNames(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithMetricPrefix inserts prefix between the subsystem and the metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if p := strings.Trim(prefix, "_"); p != "" {
			m.metricPrefix = p
		}
	}
}

// WithHistogramBuckets replaces the latency buckets. Buckets that are not
// strictly increasing are ignored.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				return
			}
		}
		m.histogramBuckets = slices.Clone(buckets)
	}
}

// WithMetricsEnabled turns recording on or off. Collectors are registered
// either way so the exposition stays stable.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets the RunSystemCollector period.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithConstLabels attaches labels to every collector.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry sets the registerer collectors are added to.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
