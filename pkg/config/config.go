package config

import "time"

// Config is the root configuration structure for choosec.
type Config struct {
	// Log controls the structured logger used by every command.
	Log LogConfig `yaml:"log"`

	// Output controls where compiled IR is written.
	Output OutputConfig `yaml:"output"`

	// Run controls the IR interpreter used by "choosec run".
	Run RunConfig `yaml:"run"`

	// Watch controls "choosec watch".
	Watch WatchConfig `yaml:"watch"`

	// Metrics controls the Prometheus endpoint served in watch mode.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("text", "json").
	// Default: "text"
	Format string `yaml:"format"`
}

// OutputConfig contains output file configuration.
type OutputConfig struct {
	// Extension replaces the last three characters of the input path.
	// Default: ".ll"
	Extension string `yaml:"extension"`
}

// RunConfig contains interpreter configuration.
type RunConfig struct {
	// MaxSteps bounds the number of IR instructions a program may execute.
	// Default: 1000000
	MaxSteps int `yaml:"max_steps"`
}

// WatchConfig contains file watcher configuration.
type WatchConfig struct {
	// Debounce is how long to wait after the last change before recompiling.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig contains metrics endpoint configuration.
type MetricsConfig struct {
	// ListenAddress serves /metrics when non-empty, e.g. "127.0.0.1:9464".
	// Default: "" (disabled)
	ListenAddress string `yaml:"listen_address"`

	// Namespace prefixes every metric name.
	// Default: "choosec"
	Namespace string `yaml:"namespace"`
}
