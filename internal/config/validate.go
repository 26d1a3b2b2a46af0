// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // SYNC_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/gorhill/cronexpr"
)

// Validate checks the configuration for values the service cannot run with.
// Missing open-data credentials are allowed; the sync reports them.
func (c *Config) Validate() error {
	if err := c.validateDataGov(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateGeo(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataGov() error {
	if c.DataGov.BaseURL != "" {
		if err := validateHTTPURL(c.DataGov.BaseURL, "DATA_GOV_API_BASE"); err != nil {
			return err
		}
	}
	if c.DataGov.PageSize < 1 {
		return fmt.Errorf("DATA_GOV_PAGE_SIZE must be positive")
	}
	if c.DataGov.MaxPages < 1 {
		return fmt.Errorf("DATA_GOV_MAX_PAGES must be positive")
	}
	if c.DataGov.Timeout <= 0 {
		return fmt.Errorf("DATA_GOV_TIMEOUT must be positive")
	}
	if c.DataGov.MaxRetries < 0 {
		return fmt.Errorf("DATA_GOV_MAX_RETRIES cannot be negative")
	}
	if c.DataGov.RequestsPerSecond < 0 {
		return fmt.Errorf("DATA_GOV_REQUESTS_PER_SECOND cannot be negative")
	}
	return nil
}

func (c *Config) validateSync() error {
	if _, err := cronexpr.Parse(c.Sync.Schedule); err != nil {
		return fmt.Errorf("SYNC_SCHEDULE %q is not a valid cron expression: %w", c.Sync.Schedule, err)
	}
	if c.Sync.StartYear < 2000 {
		return fmt.Errorf("SYNC_START_YEAR must be 2000 or later")
	}
	if c.Sync.StartYear > time.Now().Year() {
		return fmt.Errorf("SYNC_START_YEAR cannot be in the future")
	}
	if c.Sync.Timezone != "" {
		if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
			return fmt.Errorf("SYNC_TIMEZONE %q: %w", c.Sync.Timezone, err)
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required for the duckdb store")
		}
	case "mongo":
		if !strings.HasPrefix(c.Mongo.URI, "mongodb://") && !strings.HasPrefix(c.Mongo.URI, "mongodb+srv://") {
			return fmt.Errorf("MONGODB_URI must start with mongodb:// or mongodb+srv://")
		}
		if c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("MONGODB_DATABASE and MONGODB_COLLECTION are required")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be duckdb or mongo, got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "redis":
		if !strings.HasPrefix(c.Cache.RedisURL, "redis://") && !strings.HasPrefix(c.Cache.RedisURL, "rediss://") {
			return fmt.Errorf("REDIS_URL must start with redis:// or rediss://")
		}
	case "badger":
		if c.Cache.BadgerPath == "" {
			return fmt.Errorf("CACHE_BADGER_PATH is required for the badger cache")
		}
	case "memory":
		if c.Cache.MemorySize < 1 {
			return fmt.Errorf("CACHE_MEMORY_SIZE must be positive")
		}
	case "none":
	default:
		return fmt.Errorf("CACHE_BACKEND must be redis, memory, badger or none, got %q", c.Cache.Backend)
	}

	for name, ttl := range map[string]time.Duration{
		"CACHE_DEFAULT_TTL": c.Cache.DefaultTTL,
		"CACHE_CURRENT_TTL": c.Cache.CurrentTTL,
		"CACHE_HISTORY_TTL": c.Cache.HistoryTTL,
		"CACHE_COMPARE_TTL": c.Cache.CompareTTL,
	} {
		if ttl < time.Second {
			return fmt.Errorf("%s must be at least 1s", name)
		}
	}
	return nil
}

func (c *Config) validateGeo() error {
	if !c.Geo.ReverseGeocode {
		return nil
	}
	if err := validateHTTPURL(c.Geo.NominatimURL, "GEO_NOMINATIM_URL"); err != nil {
		return err
	}
	if c.Geo.UserAgent == "" {
		return fmt.Errorf("GEO_USER_AGENT is required when reverse geocoding is enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless RATE_LIMIT_DISABLED")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// validateHTTPURL checks for an absolute http(s) URL with a host. Paths are
// allowed because the open-data base URL carries one.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}
