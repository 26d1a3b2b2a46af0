// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mgnrega/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	// Open-data API
	"data_gov_api_key":             "datagov.api_key",
	"data_gov_api_base":            "datagov.base_url",
	"data_gov_resource_id":         "datagov.resource_id",
	"data_gov_state":               "datagov.state",
	"data_gov_state_field":         "datagov.state_field",
	"data_gov_fin_year_field":      "datagov.fin_year_field",
	"data_gov_page_size":           "datagov.page_size",
	"data_gov_max_pages":           "datagov.max_pages",
	"data_gov_timeout":             "datagov.timeout",
	"data_gov_max_retries":         "datagov.max_retries",
	"data_gov_retry_delay":         "datagov.retry_delay",
	"data_gov_max_retry_delay":     "datagov.max_retry_delay",
	"data_gov_requests_per_second": "datagov.requests_per_second",
	"data_gov_circuit_breaker":     "datagov.circuit_breaker",

	// Sync
	"sync_enabled":      "sync.enabled",
	"sync_run_on_start": "sync.run_on_start",
	"sync_schedule":     "sync.schedule",
	"sync_timezone":     "sync.timezone",
	"sync_start_year":   "sync.start_year",

	// Store
	"store_backend":           "store.backend",
	"store_backfill_on_start": "store.backfill_on_start",
	"duckdb_path":             "database.path",
	"duckdb_max_memory":       "database.max_memory",
	"duckdb_threads":          "database.threads",
	"mongodb_uri":             "mongo.uri",
	"mongodb_database":        "mongo.database",
	"mongodb_collection":      "mongo.collection",
	"mongodb_connect_timeout": "mongo.connect_timeout",

	// Cache
	"cache_backend":      "cache.backend",
	"redis_url":          "cache.redis_url",
	"redis_max_idle":     "cache.redis_max_idle",
	"redis_max_active":   "cache.redis_max_active",
	"redis_dial_timeout": "cache.redis_dial_timeout",
	"cache_badger_path":  "cache.badger_path",
	"cache_memory_size":  "cache.memory_size",
	"cache_default_ttl":  "cache.default_ttl",
	"cache_current_ttl":  "cache.current_ttl",
	"cache_history_ttl":  "cache.history_ttl",
	"cache_compare_ttl":  "cache.compare_ttl",

	// Geo
	"geo_reverse_geocode": "geo.reverse_geocode",
	"geo_nominatim_url":   "geo.nominatim_url",
	"geo_user_agent":      "geo.user_agent",
	"geo_timeout":         "geo.timeout",

	// Server
	"port":         "server.port",
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"node_env":     "server.environment",
	"environment":  "server.environment",

	// Security
	"cors_origin":         "security.cors_origins",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"sync_token":          "security.sync_token",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// Load loads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads .env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
