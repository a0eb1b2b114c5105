package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/spreadarb/internal/arb"
	"github.com/hetulpatel/spreadarb/internal/models"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

type memPrices struct {
	obs    []venues.Observation
	err    error
	closed bool
}

func (m *memPrices) SetPrices(ctx context.Context, obs []venues.Observation) error {
	m.obs = append(m.obs, obs...)
	return m.err
}

func (m *memPrices) GetPrice(ctx context.Context, pair string, venue venues.VenueID) (float64, time.Time, error) {
	return 0, time.Time{}, ErrNotFound
}

func (m *memPrices) Close() error {
	m.closed = true
	return nil
}

type memOpps struct {
	byPair map[string]OpportunityRecord
	closed bool
}

func (m *memOpps) Get(ctx context.Context, pair string) (*OpportunityRecord, bool, error) {
	rec, ok := m.byPair[pair]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (m *memOpps) Set(ctx context.Context, pair string, record OpportunityRecord) error {
	if m.byPair == nil {
		m.byPair = map[string]OpportunityRecord{}
	}
	m.byPair[pair] = record
	return nil
}

func (m *memOpps) Close() error {
	m.closed = true
	return nil
}

func recordedReport() models.CycleReport {
	return models.CycleReport{
		CycleID: "c1",
		Pair:    "ETH/USDC",
		Observations: []venues.Observation{
			{Venue: "DEX1", Pair: "ETH/USDC", Price: 990},
			{Venue: "DEX2", Pair: "ETH/USDC", Price: 1010},
		},
		Signal:  &arb.Signal{BuyVenue: "DEX1", SellVenue: "DEX2", ReferencePrice: 990, Margin: 0.0202},
		Outcome: models.OutcomeExecuted,
	}
}

func TestRecorderStoresPricesAndOpportunity(t *testing.T) {
	prices, opps := &memPrices{}, &memOpps{}
	rec := NewRecorder(prices, opps)

	require.NoError(t, rec.Record(context.Background(), recordedReport()))

	assert.Len(t, prices.obs, 2)
	got, ok, err := opps.Get(context.Background(), "ETH/USDC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c1", got.CycleID)
	assert.Equal(t, "DEX2", got.SellVenue)
	assert.Equal(t, "executed", got.Outcome)

	require.NoError(t, rec.Close())
	assert.True(t, prices.closed)
	assert.True(t, opps.closed)
}

func TestRecorderSkipsOpportunityWithoutSignal(t *testing.T) {
	prices, opps := &memPrices{err: errors.New("redis down")}, &memOpps{}
	rec := NewRecorder(prices, opps)

	err := rec.Record(context.Background(), models.CycleReport{Pair: "ETH/USDC", Outcome: models.OutcomeNoOpportunity})
	require.Error(t, err)
	assert.Empty(t, opps.byPair)
}

func TestRecorderWithoutCaches(t *testing.T) {
	rec := NewRecorder(nil, nil)
	require.NoError(t, rec.Record(context.Background(), models.CycleReport{}))
	require.NoError(t, rec.Close())
}
