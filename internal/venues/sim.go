package venues

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hetulpatel/spreadarb/internal/logging"
)

var ErrSimulatedOutage = errors.New("simulated venue outage")

// SimConfig provides optional overrides for a simulated venue.
type SimConfig struct {
	BasePrice    float64
	Jitter       float64
	FetchLatency time.Duration
	OrderLatency time.Duration
	// FailureRate is the probability in [0,1] that a fetch or order fails.
	FailureRate float64
	Seed        uint64
}

// SimClient stands in for a real venue: prices are BasePrice plus uniform
// noise in [-Jitter, Jitter).
type SimClient struct {
	id     VenueID
	cfg    SimConfig
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimClient(id VenueID, cfg SimConfig) *SimClient {
	if cfg.BasePrice <= 0 {
		cfg.BasePrice = 1000
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SimClient{
		id:     id,
		cfg:    cfg,
		logger: logging.With("sim-venue").With(slog.String("venue", string(id))),
		rng:    rand.New(rand.NewPCG(seed, uint64(len(id)))),
	}
}

func (c *SimClient) Name() VenueID {
	return c.id
}

func (c *SimClient) FetchPrice(ctx context.Context, pair string) (float64, error) {
	if err := wait(ctx, c.cfg.FetchLatency); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail() {
		return 0, ErrSimulatedOutage
	}
	variation := (c.rng.Float64()*2 - 1) * c.cfg.Jitter
	return c.cfg.BasePrice + variation, nil
}

func (c *SimClient) SubmitOrder(ctx context.Context, pair string, signedAmount float64) error {
	if err := wait(ctx, c.cfg.OrderLatency); err != nil {
		return err
	}
	c.mu.Lock()
	failed := c.fail()
	c.mu.Unlock()
	if failed {
		return ErrSimulatedOutage
	}
	c.logger.Info("executed order", slog.String("pair", pair), slog.Float64("amount", signedAmount))
	return nil
}

// fail must be called with mu held.
func (c *SimClient) fail() bool {
	return c.cfg.FailureRate > 0 && c.rng.Float64() < c.cfg.FailureRate
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
