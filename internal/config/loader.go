package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECORDS_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. the YAML file named by RECORDS_CONFIG, if set
//  3. RECORDS_* environment variables with flat keys
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RECORDS_DATASET_PATH -> dataset_path
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that have no usable fallback.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DatasetPath) == "" {
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.ReloadIntervalSec < 0 {
		return fmt.Errorf("%w: reload_interval_sec must not be negative", ErrInvalidConfig)
	}
	if c.MetricsRefreshSec < 0 {
		return fmt.Errorf("%w: metrics_refresh_sec must not be negative", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
