// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"XLIFF_DB_PATH" envDefault:"./data/xliff.db"`
	ServerHost string `env:"XLIFF_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"XLIFF_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"XLIFF_ENV" envDefault:"development"`
	LogLevel   string `env:"XLIFF_LOG_LEVEL" envDefault:"info"`
	Language   string `env:"XLIFF_LANGUAGE" envDefault:"en"`

	// Export configuration
	SourceSiteID      int64    `env:"XLIFF_SOURCE_SITE" envDefault:"1"`
	ExportDir         string   `env:"XLIFF_EXPORT_DIR" envDefault:"./exports"`
	MetaAllowPrefixes []string `env:"XLIFF_META_ALLOW_PREFIXES" envSeparator:"," envDefault:"_genesis_"`
	ExcludeMetaKey    string   `env:"XLIFF_EXCLUDE_META_KEY" envDefault:"xliff_exclude_from_mass_export"`
	SubjectTemplate   string   `env:"XLIFF_SUBJECT_TEMPLATE" envDefault:"XLIFF export: %%POST_TITLE%% (%%POST_ID%%)"`

	// Import upload limits
	MaxUploadMB     int     `env:"XLIFF_MAX_UPLOAD_MB" envDefault:"20"`
	ImportRateLimit float64 `env:"XLIFF_IMPORT_RATE" envDefault:"1"` // imports per second
	ImportBurst     int     `env:"XLIFF_IMPORT_BURST" envDefault:"5"`

	// Cache configuration
	CacheType    string `env:"XLIFF_CACHE_TYPE" envDefault:"memory"`
	RedisURL     string `env:"XLIFF_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"XLIFF_CACHE_PREFIX" envDefault:"xliff:"`  // Redis key prefix
	CacheTTL     int    `env:"XLIFF_CACHE_TTL" envDefault:"600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"XLIFF_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Seeding configuration
	DoSeed bool `env:"XLIFF_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.CacheType == "redis" || (c.CacheType == "" && c.RedisURL != "")
}

// CacheTTLDuration returns the cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env.Parse cannot check.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("XLIFF_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.SourceSiteID < 1 {
		return fmt.Errorf("XLIFF_SOURCE_SITE must be a site ID, got %d", c.SourceSiteID)
	}
	switch c.CacheType {
	case "", "memory", "none":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("XLIFF_CACHE_TYPE is redis but XLIFF_REDIS_URL is not set")
		}
	default:
		return fmt.Errorf("XLIFF_CACHE_TYPE must be memory, redis or none, got %q", c.CacheType)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("XLIFF_MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.ImportRateLimit <= 0 || c.ImportBurst < 1 {
		return fmt.Errorf("XLIFF_IMPORT_RATE and XLIFF_IMPORT_BURST must be positive")
	}

	prefixes := c.MetaAllowPrefixes[:0]
	for _, p := range c.MetaAllowPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	c.MetaAllowPrefixes = prefixes
	return nil
}
