// Package config defines the service configuration and its loader.
package config

import "context"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath is the records CSV.
	DatasetPath string `koanf:"dataset_path"`

	// ReloadIntervalSec polls the dataset for changes. 0 disables reloading.
	ReloadIntervalSec int `koanf:"reload_interval_sec"`

	// MaxSessions bounds the number of stored session criteria.
	MaxSessions int `koanf:"max_sessions"`

	// MaxExportRows caps export responses.
	MaxExportRows int `koanf:"max_export_rows"`

	// Metrics settings. Names are namespace_subsystem[_prefix]_metric.
	MetricsEnabled    bool              `koanf:"metrics_enabled"`
	MetricsNamespace  string            `koanf:"metrics_namespace"`
	MetricsSubsystem  string            `koanf:"metrics_subsystem"`
	MetricsPrefix     string            `koanf:"metrics_prefix"`
	MetricsBuckets    []float64         `koanf:"metrics_buckets"`
	MetricsLabels     map[string]string `koanf:"metrics_labels"`
	MetricsRefreshSec int               `koanf:"metrics_refresh_sec"`
}

// New returns a Config holding the defaults. The context is reserved for
// sources that need one.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DatasetPath:       "Records Master Sheet.csv",
		ReloadIntervalSec: 0,
		MaxSessions:       10_000,
		MaxExportRows:     100_000,
		MetricsEnabled:    true,
		MetricsNamespace:  "wrpf",
		MetricsSubsystem:  "records",
		MetricsRefreshSec: 10,
	}
}
