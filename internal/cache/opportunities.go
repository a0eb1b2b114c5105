package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpportunityRecord captures the latest detected opportunity for a pair.
type OpportunityRecord struct {
	CycleID        string    `json:"cycle_id"`
	BuyVenue       string    `json:"buy_venue"`
	SellVenue      string    `json:"sell_venue"`
	ReferencePrice float64   `json:"reference_price"`
	Margin         float64   `json:"margin"`
	Outcome        string    `json:"outcome"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OpportunityCache stores the most recent opportunity per pair so other
// processes can inspect what the bot last acted on.
type OpportunityCache interface {
	Get(ctx context.Context, pair string) (*OpportunityRecord, bool, error)
	Set(ctx context.Context, pair string, record OpportunityRecord) error
	Close() error
}

type redisOpportunityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisOpportunityCache builds a cache keyed by pair symbol.
func NewRedisOpportunityCache(addr, password string, db int, ttl time.Duration, prefix string) (OpportunityCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "arb_last_opportunity"
	}
	return &redisOpportunityCache{client: newClient(addr, password, db), ttl: ttl, prefix: prefix}, nil
}

func (c *redisOpportunityCache) key(pair string) string {
	return fmt.Sprintf("%s:%s", c.prefix, pair)
}

func (c *redisOpportunityCache) Get(ctx context.Context, pair string) (*OpportunityRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(pair)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record OpportunityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisOpportunityCache) Set(ctx context.Context, pair string, record OpportunityRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(pair), payload, c.ttl).Err()
}

func (c *redisOpportunityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func newClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
