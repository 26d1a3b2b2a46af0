// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Package config loads dashboard configuration.
//
// Sources are layered, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (config.yaml, or the path in CONFIG_PATH)
//  3. Environment variables, after an optional .env file is loaded
//
// The common variables (DATA_GOV_API_KEY, MONGODB_URI, REDIS_URL, PORT,
// CORS_ORIGIN, NODE_ENV) are accepted under their familiar names so existing
// .env files keep working.
package config

import "time"

// Config is the root configuration.
type Config struct {
	DataGov  DataGovConfig  `koanf:"datagov"`
	Sync     SyncConfig     `koanf:"sync"`
	Store    StoreConfig    `koanf:"store"`
	Database DatabaseConfig `koanf:"database"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Cache    CacheConfig    `koanf:"cache"`
	Geo      GeoConfig      `koanf:"geo"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DataGovConfig configures the open-data API client.
type DataGovConfig struct {
	BaseURL    string `koanf:"base_url"`
	APIKey     string `koanf:"api_key"`
	ResourceID string `koanf:"resource_id"`

	// State is the value sent in the state filter.
	State        string `koanf:"state"`
	StateField   string `koanf:"state_field"`
	FinYearField string `koanf:"fin_year_field"`

	PageSize int           `koanf:"page_size"`
	MaxPages int           `koanf:"max_pages"`
	Timeout  time.Duration `koanf:"timeout"` // per page request

	MaxRetries    int           `koanf:"max_retries"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	MaxRetryDelay time.Duration `koanf:"max_retry_delay"`

	// RequestsPerSecond paces page requests. 0 disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// Configured reports whether the credentials and endpoint needed to call
// the API are present.
func (c *DataGovConfig) Configured() bool {
	return c.APIKey != "" && c.BaseURL != "" && c.ResourceID != ""
}

// SyncConfig controls the ingestion schedule.
type SyncConfig struct {
	Enabled    bool   `koanf:"enabled"`
	RunOnStart bool   `koanf:"run_on_start"`
	Schedule   string `koanf:"schedule"` // cron expression
	Timezone   string `koanf:"timezone"`
	StartYear  int    `koanf:"start_year"` // first financial year synced
}

// Location resolves Timezone, falling back to time.Local.
func (c *SyncConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend         string `koanf:"backend"` // duckdb or mongo
	BackfillOnStart bool   `koanf:"backfill_on_start"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = NumCPU
}

// MongoConfig configures the MongoDB store.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// CacheConfig selects the cache backend and its TTLs.
type CacheConfig struct {
	Backend string `koanf:"backend"` // redis, memory, badger or none

	RedisURL         string        `koanf:"redis_url"`
	RedisMaxIdle     int           `koanf:"redis_max_idle"`
	RedisMaxActive   int           `koanf:"redis_max_active"`
	RedisDialTimeout time.Duration `koanf:"redis_dial_timeout"`

	BadgerPath string `koanf:"badger_path"`
	MemorySize int    `koanf:"memory_size"` // max entries

	DefaultTTL time.Duration `koanf:"default_ttl"`
	CurrentTTL time.Duration `koanf:"current_ttl"`
	HistoryTTL time.Duration `koanf:"history_ttl"`
	CompareTTL time.Duration `koanf:"compare_ttl"`
}

// GeoConfig configures location detection.
type GeoConfig struct {
	ReverseGeocode bool          `koanf:"reverse_geocode"`
	NominatimURL   string        `koanf:"nominatim_url"`
	UserAgent      string        `koanf:"user_agent"`
	Timeout        time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds request-level protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// SyncToken, when set, must be sent as a Bearer token to trigger a sync
	// over HTTP.
	SyncToken string `koanf:"sync_token"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		DataGov: DataGovConfig{
			BaseURL:           "https://api.data.gov.in/resource",
			State:             "CHHATTISGARH",
			StateField:        "state_name",
			FinYearField:      "fin_year",
			PageSize:          500,
			MaxPages:          200,
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RetryDelay:        2 * time.Second,
			MaxRetryDelay:     30 * time.Second,
			RequestsPerSecond: 2,
			CircuitBreaker:    true,
		},
		Sync: SyncConfig{
			Enabled:    true,
			RunOnStart: true,
			Schedule:   "0 2 * * *",
			Timezone:   "Asia/Kolkata",
			StartYear:  2018,
		},
		Store: StoreConfig{
			Backend:         "duckdb",
			BackfillOnStart: true,
		},
		Database: DatabaseConfig{
			Path:      "/data/mgnrega.duckdb",
			MaxMemory: "1GB",
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "mgnrega",
			Collection:     "districtdatas",
			ConnectTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:          "memory",
			RedisURL:         "redis://localhost:6379",
			RedisMaxIdle:     4,
			RedisMaxActive:   16,
			RedisDialTimeout: 5 * time.Second,
			BadgerPath:       "/data/cache",
			MemorySize:       2048,
			DefaultTTL:       24 * time.Hour,
			CurrentTTL:       time.Hour,
			HistoryTTL:       2 * time.Hour,
			CompareTTL:       2 * time.Hour,
		},
		Geo: GeoConfig{
			ReverseGeocode: false,
			NominatimURL:   "https://nominatim.openstreetmap.org",
			UserAgent:      "MGNREGA-Dashboard/1.0",
			Timeout:        5 * time.Second,
		},
		Server: ServerConfig{
			Port:        5000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimitReqs:   100,
			RateLimitWindow: 15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
