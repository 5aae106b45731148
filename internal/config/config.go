// Package config holds all service settings, populated from environment
// variables with defaults.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/fema-ffrd/inland-consequences/internal/inventory"
	"github.com/fema-ffrd/inland-consequences/internal/matching"
)

// Config holds all service settings.
type Config struct {
	RefDataDir        string `env:"REFDATA_DIR" env-default:"refdata"`
	BuildingsPath     string `env:"BUILDINGS_CSV" env-default:"buildings.csv"`
	BuildingsProvider string `env:"BUILDINGS_PROVIDER" env-default:"generic"`
	HazardPath        string `env:"HAZARD_CSV" env-default:"hazard.csv"`
	OutputDir         string `env:"OUTPUT_DIR" env-default:"out"`

	// WildcardAttrs is a comma-separated list of building attributes the
	// matcher treats as wildcards, e.g. "construction_type,area".
	WildcardAttrs string `env:"WILDCARD_ATTRS" env-default:""`
	CalculateAAL  bool   `env:"CALCULATE_AAL" env-default:"true"`

	// DefaultPeril is assigned to buildings without a flood peril code.
	DefaultPeril string `env:"DEFAULT_PERIL" env-default:""`
	// DefaultFFHStd is the first-floor-height uncertainty in feet applied
	// when the inventory carries none.
	DefaultFFHStd float64 `env:"DEFAULT_FFH_STD" env-default:"0"`
	// DefaultDepthStd substitutes for missing hazard depth uncertainty.
	// Negative disables the fallback, making a table without per-row
	// uncertainty fatal.
	DefaultDepthStd float64 `env:"DEFAULT_DEPTH_STD" env-default:"-1"`

	HTTPAddr        string        `env:"HTTP_ADDR" env-default:""`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	// Parsed forms, populated by Load rather than the environment.
	Provider inventory.Provider
	Ignore   matching.Attr
}

// Load reads configuration from environment variables, applying defaults
// where unset, and resolves the parsed fields.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if cfg.RefDataDir == "" {
		return nil, errors.New("REFDATA_DIR is required")
	}
	if cfg.BuildingsPath == "" {
		return nil, errors.New("BUILDINGS_CSV is required")
	}
	if cfg.HazardPath == "" {
		return nil, errors.New("HAZARD_CSV is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	provider, err := inventory.ParseProvider(cfg.BuildingsProvider)
	if err != nil {
		return nil, fmt.Errorf("BUILDINGS_PROVIDER: %w", err)
	}
	cfg.Provider = provider

	ignore, unknown := matching.ParseAttrs(cfg.WildcardAttrs)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("WILDCARD_ATTRS: unknown attributes %v", unknown)
	}
	cfg.Ignore = ignore

	return &cfg, nil
}
