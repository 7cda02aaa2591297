// Package config loads gentexts settings from the environment and optional
// .env files. Every variable is prefixed with GENTEXTS_.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name
const EnvPrefix = "GENTEXTS_"

// Config holds every runtime setting
type Config struct {
	// HTTP API
	Addr string `env:"ADDR" envDefault:":8080"`

	// World time lookup
	WorldTimeURL string        `env:"WORLDTIME_URL" envDefault:"https://worldtimeapi.org"`
	Timezone     string        `env:"TIMEZONE" envDefault:"America/Manaus"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// Generation. Seed 0 seeds from the clock, QuotaBytes 0 is unlimited.
	Seed       uint64 `env:"SEED"`
	QuotaBytes int    `env:"QUOTA_BYTES"`

	// Empty keeps history in memory
	ArchivePath string `env:"ARCHIVE_PATH"`

	// Terminal presenter
	TextInterval    time.Duration `env:"TEXT_INTERVAL" envDefault:"10s"`
	ElapsedInterval time.Duration `env:"ELAPSED_INTERVAL" envDefault:"1s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the given env files (or ./.env when none are given and it
// exists) and parses the environment into a validated Config. Variables
// already set in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		// .env is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, errors.Join(ErrLoadingEnvFile, err)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr required", ErrInvalidConfig)
	case c.WorldTimeURL == "":
		return fmt.Errorf("%w: world time URL required", ErrInvalidConfig)
	case c.Timezone == "":
		return fmt.Errorf("%w: timezone required", ErrInvalidConfig)
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("%w: http timeout must be positive, got %v", ErrInvalidConfig, c.HTTPTimeout)
	case c.QuotaBytes < 0:
		return fmt.Errorf("%w: quota bytes must not be negative, got %d", ErrInvalidConfig, c.QuotaBytes)
	case c.TextInterval <= 0:
		return fmt.Errorf("%w: text interval must be positive, got %v", ErrInvalidConfig, c.TextInterval)
	case c.ElapsedInterval <= 0:
		return fmt.Errorf("%w: elapsed interval must be positive, got %v", ErrInvalidConfig, c.ElapsedInterval)
	case c.LogFormat != "json" && c.LogFormat != "console":
		return fmt.Errorf("%w: log format must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}

	return nil
}
