package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hetulpatel/spreadarb/internal/aggregator"
	"github.com/hetulpatel/spreadarb/internal/cache"
	"github.com/hetulpatel/spreadarb/internal/config"
	"github.com/hetulpatel/spreadarb/internal/engine"
	"github.com/hetulpatel/spreadarb/internal/executor"
	"github.com/hetulpatel/spreadarb/internal/history"
	"github.com/hetulpatel/spreadarb/internal/kafka"
	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/queue"
	sqlstore "github.com/hetulpatel/spreadarb/internal/storage/sqlite"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

// App holds the wired components of a running bot.
type App struct {
	Venues   *venues.Set
	History  *history.PriceHistory
	Poller   *aggregator.Aggregator
	Executor *executor.Executor
	Loop     *engine.Loop
}

// BuildVenues constructs one client per configured venue, in order.
func BuildVenues(cfgs []config.VenueConfig) (*venues.Set, error) {
	clients := make([]venues.Client, 0, len(cfgs))
	for _, vc := range cfgs {
		id := venues.VenueID(vc.ID)
		switch vc.Kind {
		case config.VenueKindHTTP:
			c, err := venues.NewHTTPClient(id, venues.HTTPConfig{BaseURL: vc.BaseURL, APIKey: vc.APIKey})
			if err != nil {
				return nil, err
			}
			clients = append(clients, c)
		case config.VenueKindSim, "":
			clients = append(clients, venues.NewSimClient(id, venues.SimConfig{
				BasePrice:    vc.BasePrice,
				Jitter:       vc.Jitter,
				FetchLatency: vc.FetchLatency,
				OrderLatency: vc.OrderLatency,
				FailureRate:  vc.FailureRate,
			}))
		default:
			return nil, fmt.Errorf("venue %s: unknown kind %q", vc.ID, vc.Kind)
		}
	}
	return venues.NewSet(clients...)
}

// Wire constructs every component from cfg and returns them together with a
// cleanup function releasing the optional sinks.
func Wire(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	logger := logging.Logger()

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", slog.String("error", err.Error()))
			}
		}
	}

	set, err := BuildVenues(cfg.Venues)
	if err != nil {
		return nil, cleanup, fmt.Errorf("build venues: %w", err)
	}

	hist := history.New(history.WithMaxEntries(cfg.HistoryMaxEntries))
	poller := aggregator.New(set, hist, aggregator.Config{FetchTimeout: cfg.FetchTimeout})
	exec := executor.New(set, executor.Config{Pair: cfg.Pair, OrderTimeout: cfg.OrderTimeout})

	var recorders []engine.Recorder

	if cfg.Redis.Enabled {
		prices, err := cache.NewRedisPriceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PriceTTL, cfg.Redis.Prefix+":price")
		if err != nil {
			return nil, cleanup, fmt.Errorf("redis price cache: %w", err)
		}
		opps, err := cache.NewRedisOpportunityCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, 0, cfg.Redis.Prefix+":opportunity")
		if err != nil {
			prices.Close()
			return nil, cleanup, fmt.Errorf("redis opportunity cache: %w", err)
		}
		rec := cache.NewRecorder(prices, opps)
		closers = append(closers, rec.Close)
		recorders = append(recorders, rec)
		logger.Info("redis cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	if cfg.Kafka.Enabled {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.WaitForBroker(waitCtx, cfg.Kafka.Brokers); err != nil {
			cancel()
			return nil, cleanup, fmt.Errorf("wait for broker: %w", err)
		}
		if err := kafka.EnsureTopic(waitCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logger.Warn("ensure topic warning", slog.String("error", err.Error()))
		}
		cancel()
		pub := queue.NewReportPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		closers = append(closers, pub.Close)
		recorders = append(recorders, pub)
		logger.Info("kafka reports enabled", slog.String("topic", cfg.Kafka.Topic))
	}

	if cfg.SQLite.Enabled {
		store, err := sqlstore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open sqlite: %w", err)
		}
		closers = append(closers, store.Close)
		if err := store.CreateTables(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("create tables: %w", err)
		}
		recorders = append(recorders, store)
		logger.Info("sqlite trade journal enabled", slog.String("path", store.Path()))
	}

	loop := engine.New(engine.Config{
		Pair:         cfg.Pair,
		PollInterval: cfg.PollInterval,
		Threshold:    cfg.Threshold,
		TradeAmount:  cfg.TradeAmount,
		MaxCycles:    cfg.MaxCycles,
	}, poller, exec, recorders...)

	return &App{
		Venues:   set,
		History:  hist,
		Poller:   poller,
		Executor: exec,
		Loop:     loop,
	}, cleanup, nil
}
