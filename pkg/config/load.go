package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads the file (or the defaults when optional is
// set and the file does not exist) and then applies CHOOSEC_* environment
// variables.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string, optional bool) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("CHOOSEC_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("CHOOSEC_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv("CHOOSEC_OUTPUT_EXTENSION"); val != "" {
		cfg.Output.Extension = val
	}
	if val := os.Getenv("CHOOSEC_RUN_MAX_STEPS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("CHOOSEC_RUN_MAX_STEPS: %w", err)
		}
		cfg.Run.MaxSteps = n
	}
	if val := os.Getenv("CHOOSEC_WATCH_DEBOUNCE"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("CHOOSEC_WATCH_DEBOUNCE: %w", err)
		}
		cfg.Watch.Debounce = d
	}
	if val := os.Getenv("CHOOSEC_METRICS_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
	return nil
}
