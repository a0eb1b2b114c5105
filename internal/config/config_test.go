package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ETH/USDC", cfg.Pair)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 0.005, cfg.Threshold)
	require.Len(t, cfg.Venues, 3)
	assert.Equal(t, "DEX1", cfg.Venues[0].ID)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.SQLite.Enabled)
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arb.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
pair = "BTC/USDT"
poll_interval = "250ms"
threshold = 0.01
trade_amount = 0.5

[[venues]]
id = "A"
kind = "sim"
base_price = 50000.0
jitter = 20.0

[[venues]]
id = "B"
kind = "http"
base_url = "http://localhost:9000"

[sqlite]
enabled = true
path = "tmp/journal.db"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "BTC/USDT", cfg.Pair)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 0.01, cfg.Threshold)
	assert.Equal(t, 0.5, cfg.TradeAmount)
	require.Len(t, cfg.Venues, 2)
	assert.Equal(t, VenueKindHTTP, cfg.Venues[1].Kind)
	assert.Equal(t, 50000.0, cfg.Venues[0].BasePrice)
	assert.True(t, cfg.SQLite.Enabled)
	assert.Equal(t, "tmp/journal.db", cfg.SQLite.Path)
	// untouched sections keep their defaults
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "arb", cfg.Redis.Prefix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARB_PAIR", "SOL/USDC")
	t.Setenv("ARB_POLL_INTERVAL", "1s")
	t.Setenv("ARB_THRESHOLD", "0.02")
	t.Setenv("ARB_MAX_CYCLES", "7")
	t.Setenv("ARB_VENUES", "X, Y ,")
	t.Setenv("ARB_KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ARB_FETCH_TIMEOUT", "not-a-duration")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "SOL/USDC", cfg.Pair)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 0.02, cfg.Threshold)
	assert.Equal(t, 7, cfg.MaxCycles)
	require.Len(t, cfg.Venues, 2)
	assert.Equal(t, "X", cfg.Venues[0].ID)
	assert.Equal(t, "Y", cfg.Venues[1].ID)
	assert.Equal(t, VenueKindSim, cfg.Venues[1].Kind)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	// unparsable values are ignored
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Pair = " "
	cfg.Threshold = 0
	cfg.TradeAmount = -1
	cfg.LogLevel = "loud"
	cfg.Venues = []VenueConfig{
		{ID: "A", Kind: VenueKindSim},
		{ID: "A", Kind: "ftp"},
		{ID: "B", Kind: VenueKindHTTP},
	}
	cfg.Redis = RedisConfig{Enabled: true}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"pair must not be empty",
		"threshold must be positive",
		"trade_amount",
		`unknown log_level "loud"`,
		`duplicate id "A"`,
		`unknown kind "ftp"`,
		"base_url is required",
		"redis: addr is required",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateNeedsTwoVenues(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = cfg.Venues[:1]
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two venues")
}

func TestValidateRejectsNonFiniteThreshold(t *testing.T) {
	for _, th := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		cfg := Defaults()
		cfg.Threshold = th
		err := cfg.Validate()
		require.Error(t, err, "threshold %v", th)
		assert.Contains(t, err.Error(), "threshold must be positive")
	}
}
