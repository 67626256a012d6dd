package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/cesargomez89/walkmlb/internal/constants"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "WALKMLB_CONFIG"

// DefaultConfigPaths are searched in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"walkmlb.yaml",
	"walkmlb.yml",
}

// envMappings maps environment variables onto koanf keys. Unknown variables are ignored.
var envMappings = map[string]string{
	"port":                      "server.port",
	"db_path":                   "database.path",
	"statsapi_url":              "statsapi.base_url",
	"statsapi_live_url":         "statsapi.live_url",
	"statsapi_timeout":          "statsapi.timeout",
	"statsapi_rps":              "statsapi.requests_per_second",
	"statsapi_max_attempts":     "statsapi.max_attempts",
	"update_tz":                 "updater.timezone",
	"cache_retention_days":      "updater.cache_retention_days",
	"updater_log_detail":        "updater.log_detail",
	"updater_live_interval":     "updater.live_interval",
	"updater_idle_interval":     "updater.idle_interval",
	"updater_concurrency":       "updater.concurrency",
	"updater_diag_capacity":     "updater.diagnostics_capacity",
	"updater_max_backfill_days": "updater.max_backfill_days",
	"log_level":                 "logging.level",
	"log_format":                "logging.format",
	"otel_endpoint":             "telemetry.otel_endpoint",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: constants.DefaultPort,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(xdg.DataHome, constants.DefaultDBFile),
		},
		StatsAPI: StatsAPIConfig{
			BaseURL:           constants.DefaultStatsAPIURL,
			LiveURL:           constants.DefaultLiveFeedURL,
			Timeout:           constants.DefaultHTTPTimeout,
			RequestsPerSecond: constants.DefaultRequestRate,
			MaxAttempts:       constants.DefaultRetryCount,
		},
		Updater: UpdaterConfig{
			Timezone:            constants.DefaultTimezone,
			CacheRetentionDays:  constants.DefaultRetentionDays,
			LiveInterval:        constants.DefaultLiveInterval,
			IdleInterval:        constants.DefaultIdleInterval,
			Concurrency:         constants.DefaultConcurrency,
			DiagnosticsCapacity: constants.DefaultDiagnosticsCapacity,
			MaxBackfillDays:     constants.DefaultMaxBackfillDays,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers defaults, an optional YAML file and environment variables, then validates.
// An empty path falls back to WALKMLB_CONFIG and then DefaultConfigPaths.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
