package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hetulpatel/spreadarb/internal/cache"
	"github.com/hetulpatel/spreadarb/internal/config"
	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/venues"
)

// arb_status prints what a running bot last wrote to redis: the cached price
// per configured venue and the most recent opportunity.
func main() {
	configPath := flag.String("config", os.Getenv("ARB_CONFIG"), "path to TOML config file (optional)")
	flag.Parse()
	logging.InitFromEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("[arb-status] load config: %v", err)
	}

	prices, err := cache.NewRedisPriceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PriceTTL, cfg.Redis.Prefix+":price")
	if err != nil {
		logging.Fatalf("[arb-status] price cache: %v", err)
	}
	defer prices.Close()
	opps, err := cache.NewRedisOpportunityCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, 0, cfg.Redis.Prefix+":opportunity")
	if err != nil {
		logging.Fatalf("[arb-status] opportunity cache: %v", err)
	}
	defer opps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := printStatus(ctx, os.Stdout, cfg, prices, opps); err != nil {
		logging.Errorf("[arb-status] %v", err)
	}
}

func printStatus(ctx context.Context, w io.Writer, cfg *config.Config, prices cache.PriceCache, opps cache.OpportunityCache) error {
	fmt.Fprintf(w, "pair %s\n", cfg.Pair)
	for _, v := range cfg.Venues {
		price, ts, err := prices.GetPrice(ctx, cfg.Pair, venues.VenueID(v.ID))
		switch {
		case errors.Is(err, cache.ErrNotFound):
			fmt.Fprintf(w, "%s\tno cached price\n", v.ID)
		case err != nil:
			return err
		default:
			fmt.Fprintf(w, "%s\t%.4f\t%s\n", v.ID, price, ts.Format(time.RFC3339Nano))
		}
	}

	rec, ok, err := opps.Get(ctx, cfg.Pair)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "last opportunity: none")
		return nil
	}
	fmt.Fprintf(w, "last opportunity: %s %s -> %s ref=%.4f margin=%.4f%% outcome=%s at %s\n",
		rec.CycleID, rec.BuyVenue, rec.SellVenue, rec.ReferencePrice, rec.Margin*100, rec.Outcome,
		rec.UpdatedAt.Format(time.RFC3339Nano))
	return nil
}
