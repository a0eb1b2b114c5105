// Package config defines the startup configuration of the arbitrage bot. It is
// read once; nothing reloads it while the loop runs.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields come from built-in
// defaults, an optional TOML file, and ARB_* environment variables, in that
// order.
type Config struct {
	Pair         string        `toml:"pair"`
	PollInterval time.Duration `toml:"poll_interval"`
	Threshold    float64       `toml:"threshold"`
	// TradeAmount of zero trades the reference price as the amount.
	TradeAmount       float64       `toml:"trade_amount"`
	FetchTimeout      time.Duration `toml:"fetch_timeout"`
	OrderTimeout      time.Duration `toml:"order_timeout"`
	HistoryMaxEntries int           `toml:"history_max_entries"`
	MaxCycles         int           `toml:"max_cycles"`
	LogLevel          string        `toml:"log_level"`
	LogFormat         string        `toml:"log_format"`

	Venues []VenueConfig `toml:"venues"`
	Redis  RedisConfig   `toml:"redis"`
	Kafka  KafkaConfig   `toml:"kafka"`
	SQLite SQLiteConfig  `toml:"sqlite"`
}

const (
	VenueKindSim  = "sim"
	VenueKindHTTP = "http"
)

// VenueConfig describes one venue. Kind selects the client implementation.
type VenueConfig struct {
	ID   string `toml:"id"`
	Kind string `toml:"kind"`

	// http
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	// sim
	BasePrice    float64       `toml:"base_price"`
	Jitter       float64       `toml:"jitter"`
	FetchLatency time.Duration `toml:"fetch_latency"`
	OrderLatency time.Duration `toml:"order_latency"`
	FailureRate  float64       `toml:"failure_rate"`
}

// RedisConfig enables the latest-price and last-opportunity caches.
type RedisConfig struct {
	Enabled  bool          `toml:"enabled"`
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	PriceTTL time.Duration `toml:"price_ttl"`
	Prefix   string        `toml:"prefix"`
}

// KafkaConfig enables publishing one report per cycle.
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// SQLiteConfig enables the trade journal.
type SQLiteConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Defaults returns a runnable configuration: three simulated DEX venues
// quoting ETH/USDC around 1000.
func Defaults() Config {
	return Config{
		Pair:         "ETH/USDC",
		PollInterval: 100 * time.Millisecond,
		Threshold:    0.005,
		FetchTimeout: 2 * time.Second,
		OrderTimeout: 5 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
		Venues: []VenueConfig{
			defaultSimVenue("DEX1"),
			defaultSimVenue("DEX2"),
			defaultSimVenue("DEX3"),
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PriceTTL: time.Minute,
			Prefix:   "arb",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"kafka-broker:9092"},
			Topic:   "arb.cycles",
		},
		SQLite: SQLiteConfig{
			Path: "data/arb.db",
		},
	}
}

func defaultSimVenue(id string) VenueConfig {
	return VenueConfig{
		ID:           id,
		Kind:         VenueKindSim,
		BasePrice:    1000,
		Jitter:       5,
		FetchLatency: 50 * time.Millisecond,
		OrderLatency: 100 * time.Millisecond,
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the configuration for errors and returns all problems found.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Pair) == "" {
		errs = append(errs, "pair must not be empty")
	}
	if c.PollInterval <= 0 {
		errs = append(errs, "poll_interval must be positive")
	}
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) || c.Threshold <= 0 {
		errs = append(errs, "threshold must be positive")
	}
	if math.IsNaN(c.TradeAmount) || math.IsInf(c.TradeAmount, 0) || c.TradeAmount < 0 {
		errs = append(errs, "trade_amount must be zero or a positive number")
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, "fetch_timeout must be positive")
	}
	if c.OrderTimeout <= 0 {
		errs = append(errs, "order_timeout must be positive")
	}
	if c.HistoryMaxEntries < 0 {
		errs = append(errs, "history_max_entries must not be negative")
	}
	if c.MaxCycles < 0 {
		errs = append(errs, "max_cycles must not be negative")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if len(c.Venues) < 2 {
		errs = append(errs, "at least two venues are required")
	}
	seen := make(map[string]bool, len(c.Venues))
	for i, v := range c.Venues {
		if v.ID == "" {
			errs = append(errs, fmt.Sprintf("venues[%d]: id must not be empty", i))
			continue
		}
		if seen[v.ID] {
			errs = append(errs, fmt.Sprintf("venues[%d]: duplicate id %q", i, v.ID))
		}
		seen[v.ID] = true
		switch v.Kind {
		case VenueKindSim, "":
			if v.BasePrice < 0 {
				errs = append(errs, fmt.Sprintf("venue %s: base_price must not be negative", v.ID))
			}
			if v.FailureRate < 0 || v.FailureRate > 1 {
				errs = append(errs, fmt.Sprintf("venue %s: failure_rate must be within [0,1]", v.ID))
			}
		case VenueKindHTTP:
			if v.BaseURL == "" {
				errs = append(errs, fmt.Sprintf("venue %s: base_url is required for http venues", v.ID))
			}
		default:
			errs = append(errs, fmt.Sprintf("venue %s: unknown kind %q (valid: sim, http)", v.ID, v.Kind))
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr is required when enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, "kafka: at least one broker is required when enabled")
		}
		if c.Kafka.Topic == "" {
			errs = append(errs, "kafka: topic is required when enabled")
		}
	}
	if c.SQLite.Enabled && c.SQLite.Path == "" {
		errs = append(errs, "sqlite: path is required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
