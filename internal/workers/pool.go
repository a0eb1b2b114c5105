package workers

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/spreadarb/internal/kafka"
	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/models"
	"github.com/hetulpatel/spreadarb/internal/queue"
)

type Handler func(context.Context, *models.CycleReport) error

// MessageReader is the subset of *kafka.Reader consumed by the pool.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Run starts workerCount consumers of cycle reports and blocks until ctx ends.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			reader := kafka.NewReader(brokers, topic, group)
			defer reader.Close()
			Consume(ctx, reader, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
}

// Consume reads reports until ctx ends. Undecodable messages and handler
// errors are logged and skipped.
func Consume(ctx context.Context, reader MessageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("worker read error: %v", err)
			continue
		}

		report, err := queue.DecodeReport(msg)
		if err != nil {
			logging.Errorf("worker decode error: %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, &report); err != nil {
				logging.Errorf("worker handler error: %v", err)
			}
		}
	}
}
