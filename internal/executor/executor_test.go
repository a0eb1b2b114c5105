package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/spreadarb/internal/venues"
	"github.com/hetulpatel/spreadarb/internal/venues/venuetest"
)

var errRejected = errors.New("order rejected")

func newExecutor(t *testing.T, clients ...venues.Client) *Executor {
	t.Helper()
	set, err := venues.NewSet(clients...)
	require.NoError(t, err)
	return New(set, Config{
		Pair:   "ETH/USDC",
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestExecuteBuysThenSells(t *testing.T) {
	journal := &venuetest.Journal{}
	buy := &venuetest.Fake{ID: "DEX1", Journal: journal}
	sell := &venuetest.Fake{ID: "DEX2", Journal: journal}
	exec := newExecutor(t, buy, sell)

	require.NoError(t, exec.Execute(context.Background(), "DEX1", "DEX2", 990))

	assert.Equal(t, []venuetest.Order{
		{Venue: "DEX1", Pair: "ETH/USDC", Amount: 990},
		{Venue: "DEX2", Pair: "ETH/USDC", Amount: -990},
	}, journal.Orders())
}

func TestExecuteUnknownVenue(t *testing.T) {
	known := &venuetest.Fake{ID: "DEX1"}
	exec := newExecutor(t, known)

	err := exec.Execute(context.Background(), "DEX1", "DEX9", 1)
	require.ErrorIs(t, err, ErrVenueNotFound)
	assert.Contains(t, err.Error(), "DEX9")

	err = exec.Execute(context.Background(), "DEX9", "DEX1", 1)
	require.ErrorIs(t, err, ErrVenueNotFound)

	assert.Zero(t, known.Orders())
}

func TestExecuteBuyFailureSkipsSell(t *testing.T) {
	buy := &venuetest.Fake{ID: "DEX1", OrderErr: errRejected}
	sell := &venuetest.Fake{ID: "DEX2"}
	exec := newExecutor(t, buy, sell)

	err := exec.Execute(context.Background(), "DEX1", "DEX2", 1)

	var buyErr *BuyFailedError
	require.ErrorAs(t, err, &buyErr)
	assert.Equal(t, venues.VenueID("DEX1"), buyErr.Venue)
	assert.ErrorIs(t, err, errRejected)
	assert.False(t, IsUnhedged(err))
	assert.Equal(t, 1, buy.Orders())
	assert.Equal(t, 0, sell.Orders())
}

func TestExecuteSellFailureIsUnhedged(t *testing.T) {
	buy := &venuetest.Fake{ID: "DEX1"}
	sell := &venuetest.Fake{ID: "DEX2", OrderErr: errRejected}
	exec := newExecutor(t, buy, sell)

	err := exec.Execute(context.Background(), "DEX1", "DEX2", 2.5)

	var sellErr *SellFailedError
	require.ErrorAs(t, err, &sellErr)
	assert.Equal(t, venues.VenueID("DEX1"), sellErr.BuyVenue)
	assert.Equal(t, venues.VenueID("DEX2"), sellErr.SellVenue)
	assert.Equal(t, 2.5, sellErr.Amount)
	assert.ErrorIs(t, err, errRejected)
	assert.True(t, IsUnhedged(err))
	assert.Contains(t, err.Error(), "unhedged")
	assert.Equal(t, 1, buy.Orders())
	assert.Equal(t, 1, sell.Orders())
}

func TestExecuteRejectsInvalidAmount(t *testing.T) {
	buy := &venuetest.Fake{ID: "DEX1"}
	sell := &venuetest.Fake{ID: "DEX2"}
	exec := newExecutor(t, buy, sell)

	for _, amount := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := exec.Execute(context.Background(), "DEX1", "DEX2", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}
	assert.Zero(t, buy.Orders())
	assert.Zero(t, sell.Orders())
}

type slowVenue struct {
	venuetest.Fake
}

func (s *slowVenue) SubmitOrder(ctx context.Context, pair string, amount float64) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestExecuteBoundsOrderByTimeout(t *testing.T) {
	buy := &slowVenue{Fake: venuetest.Fake{ID: "DEX1"}}
	sell := &venuetest.Fake{ID: "DEX2"}
	set, err := venues.NewSet(buy, sell)
	require.NoError(t, err)
	exec := New(set, Config{
		Pair:         "ETH/USDC",
		OrderTimeout: 20 * time.Millisecond,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	err = exec.Execute(context.Background(), "DEX1", "DEX2", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	var buyErr *BuyFailedError
	assert.ErrorAs(t, err, &buyErr)
	assert.Zero(t, sell.Orders())
}

type panickyVenue struct {
	venuetest.Fake
}

func (p *panickyVenue) SubmitOrder(ctx context.Context, pair string, amount float64) error {
	panic("venue sdk bug")
}

func TestExecuteSellPanicIsUnhedged(t *testing.T) {
	buy := &venuetest.Fake{ID: "DEX1"}
	sell := &panickyVenue{Fake: venuetest.Fake{ID: "DEX2"}}
	exec := newExecutor(t, buy, sell)

	var err error
	require.NotPanics(t, func() {
		err = exec.Execute(context.Background(), "DEX1", "DEX2", 1)
	})
	var sellErr *SellFailedError
	require.ErrorAs(t, err, &sellErr)
	assert.True(t, IsUnhedged(err))
	assert.Contains(t, err.Error(), "venue sdk bug")
	assert.Equal(t, 1, buy.Orders())
}

func TestExecuteBuyPanicSkipsSell(t *testing.T) {
	buy := &panickyVenue{Fake: venuetest.Fake{ID: "DEX1"}}
	sell := &venuetest.Fake{ID: "DEX2"}
	exec := newExecutor(t, buy, sell)

	err := exec.Execute(context.Background(), "DEX1", "DEX2", 1)
	var buyErr *BuyFailedError
	require.ErrorAs(t, err, &buyErr)
	assert.False(t, IsUnhedged(err))
	assert.Zero(t, sell.Orders())
}
