package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/hetulpatel/spreadarb/internal/kafka"
	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/models"
	"github.com/hetulpatel/spreadarb/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logging.InitFromEnv()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("ARB_KAFKA_TOPIC", kafka.DefaultReportTopic)
	group := envString("REPORT_TAIL_GROUP", "arb-report-tail")
	workerCount := envInt("REPORT_TAIL_WORKERS", 1)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[report-tail] wait for broker: %v", err)
	}
	cancel()

	log := logging.With("report-tail")
	logging.Infof("[report-tail] consuming %s with group %s (%d workers)", topic, group, workerCount)
	workers.Run(ctx, brokers, topic, group, workerCount, func(ctx context.Context, r *models.CycleReport) error {
		attrs := []any{
			slog.String("cycle_id", r.CycleID),
			slog.String("pair", r.Pair),
			slog.String("outcome", string(r.Outcome)),
			slog.Int("prices", len(r.Observations)),
		}
		if r.Signal != nil {
			attrs = append(attrs,
				slog.String("buy_venue", string(r.Signal.BuyVenue)),
				slog.String("sell_venue", string(r.Signal.SellVenue)),
				slog.Float64("margin", r.Signal.Margin),
			)
		}
		switch {
		case r.Unhedged:
			log.Error("unhedged cycle", append(attrs, slog.String("error", r.Error))...)
		case r.Error != "":
			log.Warn("failed cycle", append(attrs, slog.String("error", r.Error))...)
		default:
			log.Info("cycle", attrs...)
		}
		return nil
	})
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
