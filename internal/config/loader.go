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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PACER_CONFIG is set
//  3. env (prefix PACER_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PACER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PACER_ADDR, PACER_MODELS_DIR, ...
	// Map env keys like PACER_MODELS_DIR -> models_dir (flat keys).
	envProvider := env.Provider("PACER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pacer_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.RetentionSeconds <= 0:
		return nil, fmt.Errorf("%w: retention_seconds must be positive", ErrInvalidConfig)
	case cfg.SessionTTLMinutes <= 0:
		return nil, fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	case cfg.CleanupPeriodSeconds <= 0:
		return nil, fmt.Errorf("%w: cleanup_period_seconds must be positive", ErrInvalidConfig)
	case cfg.MaxSamplesPerTick <= 0:
		return nil, fmt.Errorf("%w: max_samples_per_tick must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
