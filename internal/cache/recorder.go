package cache

import (
	"context"
	"errors"

	"github.com/hetulpatel/spreadarb/internal/models"
)

// Recorder feeds cycle reports into the price and opportunity caches. Either
// cache may be nil.
type Recorder struct {
	prices PriceCache
	opps   OpportunityCache
}

func NewRecorder(prices PriceCache, opps OpportunityCache) *Recorder {
	return &Recorder{prices: prices, opps: opps}
}

func (r *Recorder) Name() string {
	return "redis"
}

func (r *Recorder) Record(ctx context.Context, report models.CycleReport) error {
	var errs []error
	if r.prices != nil {
		errs = append(errs, r.prices.SetPrices(ctx, report.Observations))
	}
	if r.opps != nil && report.Signal != nil {
		errs = append(errs, r.opps.Set(ctx, report.Pair, OpportunityRecord{
			CycleID:        report.CycleID,
			BuyVenue:       string(report.Signal.BuyVenue),
			SellVenue:      string(report.Signal.SellVenue),
			ReferencePrice: report.Signal.ReferencePrice,
			Margin:         report.Signal.Margin,
			Outcome:        string(report.Outcome),
			UpdatedAt:      report.FinishedAt,
		}))
	}
	return errors.Join(errs...)
}

func (r *Recorder) Close() error {
	var errs []error
	if r.prices != nil {
		errs = append(errs, r.prices.Close())
	}
	if r.opps != nil {
		errs = append(errs, r.opps.Close())
	}
	return errors.Join(errs...)
}
