// Package config provides configuration for the choosec command.
//
// Configuration is read from an optional YAML file, completed with defaults,
// overridden by environment variables and then validated.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CHOOSEC_SECTION_FIELD:
//
//   - CHOOSEC_LOG_LEVEL overrides log.level
//   - CHOOSEC_LOG_FORMAT overrides log.format
//   - CHOOSEC_OUTPUT_EXTENSION overrides output.extension
//   - CHOOSEC_RUN_MAX_STEPS overrides run.max_steps
//   - CHOOSEC_WATCH_DEBOUNCE overrides watch.debounce
//   - CHOOSEC_METRICS_ADDRESS overrides metrics.listen_address
//
// Environment variables always take precedence over the file.
package config
