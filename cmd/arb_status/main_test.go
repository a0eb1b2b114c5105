package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/spreadarb/internal/cache"
	"github.com/hetulpatel/spreadarb/internal/config"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

type stubPrices struct {
	byVenue map[venues.VenueID]float64
	err     error
}

func (s stubPrices) SetPrices(ctx context.Context, obs []venues.Observation) error { return nil }

func (s stubPrices) GetPrice(ctx context.Context, pair string, venue venues.VenueID) (float64, time.Time, error) {
	if s.err != nil {
		return 0, time.Time{}, s.err
	}
	p, ok := s.byVenue[venue]
	if !ok {
		return 0, time.Time{}, cache.ErrNotFound
	}
	return p, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), nil
}

func (s stubPrices) Close() error { return nil }

type stubOpps struct {
	rec *cache.OpportunityRecord
}

func (s stubOpps) Get(ctx context.Context, pair string) (*cache.OpportunityRecord, bool, error) {
	return s.rec, s.rec != nil, nil
}

func (s stubOpps) Set(ctx context.Context, pair string, record cache.OpportunityRecord) error {
	return nil
}

func (s stubOpps) Close() error { return nil }

func TestPrintStatus(t *testing.T) {
	cfg := config.Defaults()
	prices := stubPrices{byVenue: map[venues.VenueID]float64{"DEX1": 990, "DEX2": 1010}}
	opps := stubOpps{rec: &cache.OpportunityRecord{
		CycleID: "c1", BuyVenue: "DEX1", SellVenue: "DEX2", ReferencePrice: 990, Margin: 0.0202, Outcome: "executed",
	}}

	var buf bytes.Buffer
	require.NoError(t, printStatus(context.Background(), &buf, &cfg, prices, opps))
	out := buf.String()
	assert.Contains(t, out, "DEX1\t990.0000")
	assert.Contains(t, out, "DEX3\tno cached price")
	assert.Contains(t, out, "c1 DEX1 -> DEX2")
	assert.Contains(t, out, "outcome=executed")
}

func TestPrintStatusWithoutOpportunity(t *testing.T) {
	cfg := config.Defaults()
	var buf bytes.Buffer
	require.NoError(t, printStatus(context.Background(), &buf, &cfg, stubPrices{}, stubOpps{}))
	assert.Contains(t, buf.String(), "last opportunity: none")
}

func TestPrintStatusPropagatesCacheErrors(t *testing.T) {
	cfg := config.Defaults()
	var buf bytes.Buffer
	err := printStatus(context.Background(), &buf, &cfg, stubPrices{err: errors.New("connection refused")}, stubOpps{})
	require.Error(t, err)
}
