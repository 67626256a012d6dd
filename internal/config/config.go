package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	StatsAPI  StatsAPIConfig  `koanf:"statsapi"`
	Updater   UpdaterConfig   `koanf:"updater"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port string `koanf:"port" validate:"required,numeric"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// StatsAPIConfig configures the upstream feed client.
type StatsAPIConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	LiveURL           string        `koanf:"live_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	MaxAttempts       int           `koanf:"max_attempts" validate:"min=1,max=5"`
}

// UpdaterConfig configures the synchronization engine.
type UpdaterConfig struct {
	Timezone            string        `koanf:"timezone" validate:"required"`
	CacheRetentionDays  int           `koanf:"cache_retention_days"`
	LogDetail           bool          `koanf:"log_detail"`
	LiveInterval        time.Duration `koanf:"live_interval" validate:"gt=0"`
	IdleInterval        time.Duration `koanf:"idle_interval" validate:"gt=0"`
	Concurrency         int           `koanf:"concurrency" validate:"min=1,max=64"`
	DiagnosticsCapacity int           `koanf:"diagnostics_capacity" validate:"min=1"`
	MaxBackfillDays     int           `koanf:"max_backfill_days" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type TelemetryConfig struct {
	OTelEndpoint string `koanf:"otel_endpoint"`
}

// Location resolves the configured updater time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Updater.Timezone)
}

// Retention returns the cache retention window; zero means unlimited.
func (c *Config) Retention() time.Duration {
	if c.Updater.CacheRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.Updater.CacheRetentionDays) * 24 * time.Hour
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if port, err := strconv.Atoi(c.Server.Port); err == nil && (port < 1 || port > 65535) {
		errs = append(errs, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
	}

	for name, raw := range map[string]string{"STATSAPI_URL": c.StatsAPI.BaseURL, "STATSAPI_LIVE_URL": c.StatsAPI.LiveURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("%s must be an http(s) URL, got: %s", name, raw))
		}
	}

	if c.Updater.Timezone != "" {
		if _, err := c.Location(); err != nil {
			errs = append(errs, fmt.Sprintf("UPDATE_TZ is not a known time zone: %s", c.Updater.Timezone))
		}
	}

	if c.Updater.LiveInterval > 0 && c.Updater.IdleInterval > 0 && c.Updater.LiveInterval > c.Updater.IdleInterval {
		errs = append(errs, fmt.Sprintf("UPDATER_LIVE_INTERVAL (%s) must not exceed UPDATER_IDLE_INTERVAL (%s)",
			c.Updater.LiveInterval, c.Updater.IdleInterval))
	}

	if c.Telemetry.OTelEndpoint != "" {
		if _, err := url.Parse(c.Telemetry.OTelEndpoint); err != nil {
			errs = append(errs, fmt.Sprintf("OTEL_ENDPOINT is not a valid URL: %s", c.Telemetry.OTelEndpoint))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
