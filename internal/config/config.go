// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package config provides layered configuration loading for RigMatch.
// Precedence: environment variables > YAML config file > built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the RigMatch service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Engine   EngineConfig   `koanf:"engine"`
	API      APIConfig      `koanf:"api"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB catalog settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" is accepted for tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
	// SeedMockData populates the catalog with development fixtures on startup.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// CacheConfig holds recommendation result cache settings.
type CacheConfig struct {
	// Store selects the backend: "badger" (durable) or "memory".
	Store string `koanf:"store"`
	// Path is the Badger data directory, unused for the memory store.
	Path string `koanf:"path"`
	// ResultTTL bounds how long computed recommendation sets are reused.
	ResultTTL time.Duration `koanf:"result_ttl"`
	// ComponentTTL bounds component summary cache entries.
	ComponentTTL time.Duration `koanf:"component_ttl"`
}

// EngineConfig holds recommendation engine settings.
type EngineConfig struct {
	// DefaultLimit is the result count when a request does not specify one.
	DefaultLimit int `koanf:"default_limit"`
	// MaxLimit caps the requested result count.
	MaxLimit int `koanf:"max_limit"`
	// ParallelScoring fans candidate scoring out across goroutines.
	ParallelScoring bool `koanf:"parallel_scoring"`
	// ScoringTimeout bounds a full scoring pass over the candidate set.
	ScoringTimeout time.Duration `koanf:"scoring_timeout"`
	// BudgetExpansion is the budget widening fraction used by the
	// expanded-budget retrieval fallback (0.15 = ±15% of the range).
	BudgetExpansion float64 `koanf:"budget_expansion"`
}

// APIConfig holds HTTP API behavior settings.
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// EventsConfig holds the feedback event bus settings.
type EventsConfig struct {
	// FeedbackTopic is the pub/sub topic for feedback submissions.
	FeedbackTopic string `koanf:"feedback_topic"`
	// BufferSize is the in-process channel buffer per subscriber.
	BufferSize int `koanf:"buffer_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	switch c.Cache.Store {
	case "badger", "memory":
	default:
		return fmt.Errorf("cache.store must be \"badger\" or \"memory\", got %q", c.Cache.Store)
	}
	if c.Cache.Store == "badger" && c.Cache.Path == "" {
		return fmt.Errorf("cache.path must be set when cache.store is \"badger\"")
	}
	if c.Cache.ResultTTL <= 0 {
		return fmt.Errorf("cache.result_ttl must be positive, got %s", c.Cache.ResultTTL)
	}
	if c.Cache.ComponentTTL <= 0 {
		return fmt.Errorf("cache.component_ttl must be positive, got %s", c.Cache.ComponentTTL)
	}
	if c.Engine.DefaultLimit < 1 {
		return fmt.Errorf("engine.default_limit must be at least 1, got %d", c.Engine.DefaultLimit)
	}
	if c.Engine.MaxLimit < c.Engine.DefaultLimit {
		return fmt.Errorf("engine.max_limit (%d) must be >= engine.default_limit (%d)",
			c.Engine.MaxLimit, c.Engine.DefaultLimit)
	}
	if c.Engine.ScoringTimeout <= 0 {
		return fmt.Errorf("engine.scoring_timeout must be positive, got %s", c.Engine.ScoringTimeout)
	}
	if c.Engine.BudgetExpansion <= 0 || c.Engine.BudgetExpansion >= 1 {
		return fmt.Errorf("engine.budget_expansion must be in (0, 1), got %g", c.Engine.BudgetExpansion)
	}
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api page sizes invalid: default=%d max=%d",
			c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs < 1 {
			return fmt.Errorf("api.rate_limit_reqs must be at least 1, got %d", c.API.RateLimitReqs)
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow)
		}
	}
	if c.Events.FeedbackTopic == "" {
		return fmt.Errorf("events.feedback_topic must not be empty")
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("events.buffer_size must not be negative, got %d", c.Events.BufferSize)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
