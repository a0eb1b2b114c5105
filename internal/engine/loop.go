package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hetulpatel/spreadarb/internal/arb"
	"github.com/hetulpatel/spreadarb/internal/executor"
	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/models"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

const DefaultPollInterval = 100 * time.Millisecond

// Poller returns the prices observed in one cycle.
type Poller interface {
	PollAll(ctx context.Context, pair string) []venues.Observation
}

// Trader places the buy and sell legs of a detected opportunity.
type Trader interface {
	Execute(ctx context.Context, buyVenue, sellVenue venues.VenueID, amount float64) error
}

// Recorder receives every cycle report after the cycle has decided. Errors are
// logged and never affect the loop.
type Recorder interface {
	Name() string
	Record(ctx context.Context, report models.CycleReport) error
}

type Config struct {
	Pair         string
	PollInterval time.Duration
	Threshold    float64
	// TradeAmount is the size of each leg; zero trades the signal's reference
	// price as the amount.
	TradeAmount float64
	// MaxCycles stops the loop after that many cycles; zero runs until ctx ends.
	MaxCycles int
	// RecordTimeout bounds each recorder call.
	RecordTimeout time.Duration
	Logger        *slog.Logger
}

// Loop drives poll -> detect -> execute cycles one at a time.
type Loop struct {
	cfg       Config
	poller    Poller
	trader    Trader
	recorders []Recorder
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func New(cfg Config, poller Poller, trader Trader, recorders ...Recorder) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = arb.DefaultThreshold
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.With("engine")
	}
	return &Loop{
		cfg:       cfg,
		poller:    poller,
		trader:    trader,
		recorders: recorders,
		logger:    logger.With(slog.String("pair", cfg.Pair)),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Run executes cycles until ctx is cancelled or MaxCycles is reached. A
// cancelled ctx is only observed between cycles; an in-flight cycle always
// completes.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("arbitrage loop started",
		slog.Duration("poll_interval", l.cfg.PollInterval),
		slog.Float64("threshold", l.cfg.Threshold),
	)
	defer l.logger.Info("arbitrage loop stopped")

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.RunCycle(context.WithoutCancel(ctx))

		if l.cfg.MaxCycles > 0 && n >= l.cfg.MaxCycles {
			return nil
		}

		idle := time.NewTimer(l.cfg.PollInterval)
		select {
		case <-ctx.Done():
			idle.Stop()
			return ctx.Err()
		case <-idle.C:
		}
	}
}

// RunCycle performs a single poll/detect/execute pass and returns its report.
func (l *Loop) RunCycle(ctx context.Context) models.CycleReport {
	report := models.CycleReport{
		CycleID:   l.newID(),
		Pair:      l.cfg.Pair,
		StartedAt: l.now(),
	}
	log := l.logger.With(slog.String("cycle_id", report.CycleID))
	log.Info("cycle start")

	report.Observations = l.poller.PollAll(ctx, l.cfg.Pair)
	l.decide(ctx, log, &report)
	report.FinishedAt = l.now()

	l.record(ctx, log, report)
	return report
}

func (l *Loop) decide(ctx context.Context, log *slog.Logger, report *models.CycleReport) {
	if len(report.Observations) == 0 {
		report.Outcome = models.OutcomeNoPrices
		log.Warn("no venue returned a price")
		return
	}

	sig, ok := arb.Detect(report.Observations, l.cfg.Threshold)
	if !ok {
		report.Outcome = models.OutcomeNoOpportunity
		log.Debug("no opportunity", slog.Int("prices", len(report.Observations)))
		return
	}
	report.Signal = sig

	amount := l.cfg.TradeAmount
	if amount <= 0 {
		amount = sig.ReferencePrice
	}
	report.Amount = amount

	log = log.With(
		slog.String("buy_venue", string(sig.BuyVenue)),
		slog.String("sell_venue", string(sig.SellVenue)),
		slog.Float64("buy_price", sig.ReferencePrice),
		slog.Float64("sell_price", sig.SellPrice),
		slog.Float64("margin", sig.Margin),
	)
	log.Info("arbitrage opportunity detected")

	err := l.trader.Execute(ctx, sig.BuyVenue, sig.SellVenue, amount)
	report.Outcome = classify(err)
	if err == nil {
		log.Info("arbitrage trade executed", slog.Float64("amount", amount))
		return
	}
	report.Error = err.Error()
	report.Unhedged = executor.IsUnhedged(err)
	if report.Unhedged {
		log.Error("arbitrage sell leg failed, holding unhedged inventory",
			slog.Float64("amount", amount),
			slog.Bool("unhedged", true),
			slog.String("error", err.Error()),
		)
		return
	}
	log.Error("arbitrage trade failed",
		slog.String("outcome", string(report.Outcome)),
		slog.String("error", err.Error()),
	)
}

func classify(err error) models.Outcome {
	var buyErr *executor.BuyFailedError
	var sellErr *executor.SellFailedError
	switch {
	case err == nil:
		return models.OutcomeExecuted
	case errors.Is(err, executor.ErrVenueNotFound):
		return models.OutcomeVenueNotFound
	case errors.As(err, &sellErr):
		return models.OutcomeSellFailed
	case errors.As(err, &buyErr):
		return models.OutcomeBuyFailed
	default:
		return models.OutcomeFailed
	}
}

func (l *Loop) record(ctx context.Context, log *slog.Logger, report models.CycleReport) {
	for _, r := range l.recorders {
		if r == nil {
			continue
		}
		recCtx, cancel := context.WithTimeout(ctx, l.cfg.RecordTimeout)
		err := r.Record(recCtx, report)
		cancel()
		if err != nil {
			log.Warn("record cycle failed",
				slog.String("sink", r.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
}
