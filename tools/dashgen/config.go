package main

import "errors"

// KnownMetrics is the set of metric names exported by crosslister plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// Pipeline metrics.
	"crosslister_listings_loaded_total":     true,
	"crosslister_validation_failures_total": true,

	// Posting metrics.
	"crosslister_post_attempts_total":       true,
	"crosslister_post_duration_seconds":     true,
	"crosslister_missing_credentials_total": true,

	// Run metrics.
	"crosslister_runs_total":           true,
	"crosslister_run_duration_seconds": true,

	// Recording rules.
	"crosslister:posts:rate5m":               true,
	"crosslister:post_errors:rate5m":         true,
	"crosslister:validation_failures:rate5m": true,
	"crosslister:missing_credentials:rate5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
