package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/spreadarb/internal/venues"
)

var ErrNotFound = errors.New("not found")

// PriceCache mirrors the latest observed price per venue into Redis hashes at
// "{prefix}:{pair}:{venue}" with fields "price" and "ts" (unix nanos).
type PriceCache interface {
	SetPrices(ctx context.Context, obs []venues.Observation) error
	GetPrice(ctx context.Context, pair string, venue venues.VenueID) (float64, time.Time, error)
	Close() error
}

type redisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisPriceCache(addr, password string, db int, ttl time.Duration, prefix string) (PriceCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if prefix == "" {
		prefix = "price"
	}
	return &redisPriceCache{client: newClient(addr, password, db), ttl: ttl, prefix: prefix}, nil
}

func (c *redisPriceCache) key(pair string, venue venues.VenueID) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, pair, venue)
}

func (c *redisPriceCache) SetPrices(ctx context.Context, obs []venues.Observation) error {
	if c == nil || c.client == nil || len(obs) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, o := range obs {
		key := c.key(o.Pair, o.Venue)
		pipe.HSet(ctx, key, map[string]interface{}{
			"price": strconv.FormatFloat(o.Price, 'f', -1, 64),
			"ts":    strconv.FormatInt(o.ObservedAt.UnixNano(), 10),
		})
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set prices: %w", err)
	}
	return nil
}

// GetPrice returns ErrNotFound when nothing is cached for the venue.
func (c *redisPriceCache) GetPrice(ctx context.Context, pair string, venue venues.VenueID) (float64, time.Time, error) {
	if c == nil || c.client == nil {
		return 0, time.Time{}, ErrNotFound
	}
	vals, err := c.client.HGetAll(ctx, c.key(pair, venue)).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get price %s: %w", venue, err)
	}
	priceStr, ok := vals["price"]
	if !ok {
		return 0, time.Time{}, ErrNotFound
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse price %s: %w", venue, err)
	}
	var ts time.Time
	if raw, ok := vals["ts"]; ok {
		if nanos, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ts = time.Unix(0, nanos).UTC()
		}
	}
	return price, ts, nil
}

func (c *redisPriceCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
