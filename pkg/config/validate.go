package config

import (
	"fmt"
	"net"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "log.level").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"text": true, "json": true}
)

// Validate returns a ValidationError listing every invalid field, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, FieldError{"log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level)})
	}
	if !validFormats[strings.ToLower(cfg.Log.Format)] {
		errs = append(errs, FieldError{"log.format", fmt.Sprintf("unknown format %q", cfg.Log.Format)})
	}
	if !strings.HasPrefix(cfg.Output.Extension, ".") {
		errs = append(errs, FieldError{"output.extension", "must start with '.'"})
	}
	if cfg.Run.MaxSteps < 0 {
		errs = append(errs, FieldError{"run.max_steps", "must not be negative"})
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{"watch.debounce", "must not be negative"})
	}
	if addr := cfg.Metrics.ListenAddress; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, FieldError{"metrics.listen_address", err.Error()})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
