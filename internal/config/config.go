package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the zonal temperature service
type Config struct {
	// Server configuration (serve mode only)
	Port string `env:"PORT,default=8985"`

	// Computation parameters
	ZoneCount     int `env:"ZONE_COUNT,default=20"`
	BaseYear      int `env:"BASE_YEAR,default=1880"`
	BaselineStart int `env:"BASELINE_START,default=1951"`
	BaselineEnd   int `env:"BASELINE_END,default=1980"`

	// Input dataset: a local GHCN-M v3 .dat file, or empty to download
	// the archive from GHCNURL into InputDir.
	InputFile string `env:"INPUT_FILE"`
	InputDir  string `env:"INPUT_DIR,default=./input"`
	GHCNURL   string `env:"GHCN_URL,default=https://www1.ncdc.noaa.gov/pub/data/ghcn/v3/ghcnm.tavg.latest.qca.tar.gz"`

	// Output publishing
	OutputDir string `env:"OUTPUT_DIR,default=./results"`
	GCSBucket string `env:"GCS_BUCKET"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=batch"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.ZoneCount <= 0 {
		return fmt.Errorf("ZONE_COUNT must be positive, got %d", c.ZoneCount)
	}
	if c.BaselineEnd < c.BaselineStart {
		return fmt.Errorf("baseline window %d-%d is inverted", c.BaselineStart, c.BaselineEnd)
	}
	if c.BaselineStart < c.BaseYear {
		return fmt.Errorf("baseline start %d precedes base year %d", c.BaselineStart, c.BaseYear)
	}
	return nil
}
