package models

import (
	"time"

	"github.com/hetulpatel/spreadarb/internal/arb"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

// Outcome summarises how a cycle ended.
type Outcome string

const (
	OutcomeNoPrices      Outcome = "no_prices"
	OutcomeNoOpportunity Outcome = "no_opportunity"
	OutcomeExecuted      Outcome = "executed"
	OutcomeVenueNotFound Outcome = "venue_not_found"
	OutcomeBuyFailed     Outcome = "buy_failed"
	OutcomeSellFailed    Outcome = "sell_failed"
	OutcomeFailed        Outcome = "failed"
)

// CycleReport is the record of one poll/detect/execute cycle handed to the
// optional sinks (redis, kafka, sqlite).
type CycleReport struct {
	CycleID      string               `json:"cycle_id"`
	Pair         string               `json:"pair"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
	Observations []venues.Observation `json:"observations"`
	Signal       *arb.Signal          `json:"signal,omitempty"`
	Amount       float64              `json:"amount,omitempty"`
	Outcome      Outcome              `json:"outcome"`
	Error        string               `json:"error,omitempty"`
	Unhedged     bool                 `json:"unhedged,omitempty"`
}

// Traded reports whether the executor was invoked for this cycle.
func (r CycleReport) Traded() bool {
	return r.Signal != nil && r.Outcome != OutcomeNoOpportunity && r.Outcome != OutcomeNoPrices
}
