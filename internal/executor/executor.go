package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

const DefaultOrderTimeout = 5 * time.Second

// Config controls the executor; zero values fall back to defaults.
type Config struct {
	Pair         string
	OrderTimeout time.Duration
	Logger       *slog.Logger
}

// Executor places the two legs of an arbitrage trade.
type Executor struct {
	venues  *venues.Set
	pair    string
	timeout time.Duration
	logger  *slog.Logger
}

func New(set *venues.Set, cfg Config) *Executor {
	timeout := cfg.OrderTimeout
	if timeout <= 0 {
		timeout = DefaultOrderTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.With("executor")
	}
	return &Executor{venues: set, pair: cfg.Pair, timeout: timeout, logger: logger}
}

// Execute buys amount on buyVenue and, only once the buy has succeeded, sells
// the same amount on sellVenue. A failed sell is not rolled back.
func (e *Executor) Execute(ctx context.Context, buyVenue, sellVenue venues.VenueID, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	buyer, ok := e.venues.Get(buyVenue)
	if !ok {
		return fmt.Errorf("%w: %s", ErrVenueNotFound, buyVenue)
	}
	seller, ok := e.venues.Get(sellVenue)
	if !ok {
		return fmt.Errorf("%w: %s", ErrVenueNotFound, sellVenue)
	}

	log := e.logger.With(
		slog.String("pair", e.pair),
		slog.String("buy_venue", string(buyVenue)),
		slog.String("sell_venue", string(sellVenue)),
		slog.Float64("amount", amount),
	)

	if err := e.submit(ctx, buyer, amount); err != nil {
		return &BuyFailedError{Venue: buyVenue, Err: err}
	}
	log.Debug("buy leg filled")

	if err := e.submit(ctx, seller, -amount); err != nil {
		return &SellFailedError{BuyVenue: buyVenue, SellVenue: sellVenue, Amount: amount, Err: err}
	}
	log.Debug("sell leg filled")
	return nil
}

// submit reports a panicking client as a failed order.
func (e *Executor) submit(ctx context.Context, client venues.Client, signedAmount float64) (err error) {
	orderCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return client.SubmitOrder(orderCtx, e.pair, signedAmount)
}
