package config

import "time"

// Default values for configuration fields.
const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultOutputExtension = ".ll"
	DefaultRunMaxSteps     = 1_000_000
	DefaultWatchDebounce   = 100 * time.Millisecond
	DefaultMetricsNS       = "choosec"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Output.Extension == "" {
		cfg.Output.Extension = DefaultOutputExtension
	}
	if cfg.Run.MaxSteps == 0 {
		cfg.Run.MaxSteps = DefaultRunMaxSteps
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNS
	}
}
