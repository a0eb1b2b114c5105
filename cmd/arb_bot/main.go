package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/spreadarb/internal/app"
	"github.com/hetulpatel/spreadarb/internal/config"
	"github.com/hetulpatel/spreadarb/internal/logging"
)

type wireFunc func(ctx context.Context, cfg *config.Config) (*app.App, func(), error)

func main() {
	configPath := flag.String("config", os.Getenv("ARB_CONFIG"), "path to TOML config file (optional)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("[arb-bot] load config: %v", err)
	}
	logging.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logging.Fatalf("[arb-bot] %v", err)
	}

	if err := run(ctx, cfg, app.Wire); err != nil {
		stop()
		logging.Fatalf("[arb-bot] %v", err)
	}
}

// run owns every resource Wire opens; they are released before it returns.
func run(ctx context.Context, cfg *config.Config, wire wireFunc) error {
	bot, cleanup, err := wire(ctx, cfg)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return fmt.Errorf("wire: %w", err)
	}

	logging.Infof("[arb-bot] starting arbitrage bot for pair %s across %d venues", cfg.Pair, bot.Venues.Len())
	if err := bot.Loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Errorf("[arb-bot] loop exited: %v", err)
	}

	logging.Infof("[arb-bot] %d prices retained this session (%d evicted)", bot.History.Len(), bot.History.Dropped())
	for _, v := range bot.Venues.All() {
		if obs, ok := bot.History.Latest(v.Name()); ok {
			logging.Infof("[arb-bot] last %s price on %s: %.4f at %s", obs.Pair, obs.Venue, obs.Price, obs.ObservedAt.Format(time.RFC3339Nano))
		}
	}
	return nil
}
