package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/hetulpatel/spreadarb/internal/kafka"
)

// Load builds the configuration from defaults, the TOML file at path (skipped
// when path is empty), a .env file if present, and ARB_* environment
// variables. The result has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		// decode venues into an empty list so file entries never inherit
		// fields from the default sim venues
		defaults := cfg.Venues
		cfg.Venues = nil
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, err
		}
		if !md.IsDefined("venues") {
			cfg.Venues = defaults
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Pair, "ARB_PAIR")
	setDuration(&cfg.PollInterval, "ARB_POLL_INTERVAL")
	setFloat64(&cfg.Threshold, "ARB_THRESHOLD")
	setFloat64(&cfg.TradeAmount, "ARB_TRADE_AMOUNT")
	setDuration(&cfg.FetchTimeout, "ARB_FETCH_TIMEOUT")
	setDuration(&cfg.OrderTimeout, "ARB_ORDER_TIMEOUT")
	setInt(&cfg.HistoryMaxEntries, "ARB_HISTORY_MAX_ENTRIES")
	setInt(&cfg.MaxCycles, "ARB_MAX_CYCLES")
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.LogFormat, "LOG_FORMAT")

	setBool(&cfg.Redis.Enabled, "ARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setBool(&cfg.Kafka.Enabled, "ARB_KAFKA_ENABLED")
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		cfg.Kafka.Brokers = kafka.ParseBrokers(raw)
	}
	setStr(&cfg.Kafka.Topic, "ARB_KAFKA_TOPIC")

	setBool(&cfg.SQLite.Enabled, "ARB_SQLITE_ENABLED")
	setStr(&cfg.SQLite.Path, "SQLITE_PATH")

	// ARB_VENUES=DEX1,DEX2 replaces the venue list with simulated venues.
	if raw := os.Getenv("ARB_VENUES"); raw != "" {
		var venues []VenueConfig
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				venues = append(venues, defaultSimVenue(id))
			}
		}
		cfg.Venues = venues
	}
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
