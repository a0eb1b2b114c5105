package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/spreadarb/internal/history"
	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

const DefaultFetchTimeout = 2 * time.Second

var ErrInvalidPrice = errors.New("invalid price")

// FetchError records why a venue was left out of a cycle.
type FetchError struct {
	Venue venues.VenueID
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Venue, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config controls the aggregator; zero values fall back to defaults.
type Config struct {
	FetchTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

// Aggregator fans a price request out to every configured venue.
type Aggregator struct {
	venues  *venues.Set
	history *history.PriceHistory
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func New(set *venues.Set, hist *history.PriceHistory, cfg Config) *Aggregator {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.With("aggregator")
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Aggregator{venues: set, history: hist, timeout: timeout, logger: logger, now: now}
}

// PollAll fetches pair from every venue concurrently and waits for all of
// them. Failed venues are logged and omitted. Observations come back in
// configured venue order; they reach the history in arrival order.
func (a *Aggregator) PollAll(ctx context.Context, pair string) []venues.Observation {
	clients := a.venues.All()
	slots := make([]*venues.Observation, len(clients))

	var g errgroup.Group
	g.SetLimit(max(len(clients), 1))
	for i, client := range clients {
		g.Go(func() error {
			obs, err := a.fetch(ctx, client, pair)
			if err != nil {
				a.logger.Warn("venue fetch failed",
					slog.String("venue", string(client.Name())),
					slog.String("pair", pair),
					slog.String("error", err.Error()),
				)
				return nil
			}
			a.history.Append(obs)
			slots[i] = &obs
			return nil
		})
	}
	_ = g.Wait()

	out := make([]venues.Observation, 0, len(clients))
	for _, obs := range slots {
		if obs != nil {
			out = append(out, *obs)
		}
	}
	return out
}

type priceResult struct {
	price float64
	err   error
}

// fetch bounds the call by the fetch timeout even when the client ignores its
// context; a result arriving after the deadline is discarded.
func (a *Aggregator) fetch(ctx context.Context, client venues.Client, pair string) (venues.Observation, error) {
	id := client.Name()
	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan priceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- priceResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		price, err := client.FetchPrice(fetchCtx, pair)
		done <- priceResult{price: price, err: err}
	}()

	var res priceResult
	select {
	case res = <-done:
	case <-fetchCtx.Done():
		res = priceResult{err: fetchCtx.Err()}
	}
	if res.err != nil {
		return venues.Observation{}, &FetchError{Venue: id, Err: res.err}
	}
	price := res.price
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return venues.Observation{}, &FetchError{Venue: id, Err: fmt.Errorf("%w: %v", ErrInvalidPrice, price)}
	}
	return venues.Observation{
		Venue:      id,
		Pair:       pair,
		Price:      price,
		ObservedAt: a.now(),
	}, nil
}
