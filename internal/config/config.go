// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and environment variables.
// - External errors are wrapped via this package's error kinds.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ModelsDir holds the trained artifacts: regressors, scalers, metadata.
	ModelsDir string `koanf:"models_dir"`

	// ArchivePath is the sqlite file for evicted-session summaries.
	// Empty disables archiving.
	ArchivePath string `koanf:"archive_path"`

	// RetentionSeconds bounds a session's in-memory history window.
	RetentionSeconds int `koanf:"retention_seconds"`

	// SessionTTLMinutes is the idle horizon after which sessions are evicted.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// CleanupPeriodSeconds is how often the idle-eviction sweep runs.
	CleanupPeriodSeconds int `koanf:"cleanup_period_seconds"`

	// MaxSamplesPerTick caps the batch size of a single tick request.
	MaxSamplesPerTick int `koanf:"max_samples_per_tick"`
}

// New creates a Config with service defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8000",
		ModelsDir:            "models",
		ArchivePath:          "",
		RetentionSeconds:     600,
		SessionTTLMinutes:    30,
		CleanupPeriodSeconds: 60,
		MaxSamplesPerTick:    1000,
	}
}
