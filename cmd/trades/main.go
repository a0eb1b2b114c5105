package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/storage/sqlite"
)

func main() {
	pair := flag.String("pair", "ETH/USDC", "pair symbol")
	limit := flag.Int("limit", 20, "max rows")
	flag.Parse()
	logging.InitFromEnv()

	store, err := sqlite.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	rows, err := store.ListTrades(ctx, *pair, *limit)
	if err != nil {
		logging.Fatalf("list trades: %v", err)
	}
	for _, r := range rows {
		fmt.Printf("%d\t%s\t%s -> %s\tref=%.4f\tamount=%.4f\t%s", r.ID, r.CycleID, r.BuyVenue, r.SellVenue, r.ReferencePrice, r.Amount, r.Outcome)
		if r.Error != "" {
			fmt.Printf("\t%s", r.Error)
		}
		fmt.Println()
	}
	unhedged, err := store.CountUnhedged(ctx, *pair)
	if err != nil {
		logging.Fatalf("count unhedged: %v", err)
	}
	fmt.Printf("unhedged trades: %d\n", unhedged)
}
