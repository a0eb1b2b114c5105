package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/spreadarb/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReportPublisher writes one JSON message per cycle, keyed by pair.
type ReportPublisher struct {
	writer MessageWriter
}

func NewReportPublisher(writer MessageWriter) *ReportPublisher {
	return &ReportPublisher{writer: writer}
}

func (p *ReportPublisher) Name() string {
	return "kafka"
}

func (p *ReportPublisher) Record(ctx context.Context, report models.CycleReport) error {
	return PublishReport(ctx, p.writer, report)
}

func (p *ReportPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func PublishReport(ctx context.Context, writer MessageWriter, report models.CycleReport) error {
	if writer == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", report.CycleID, err)
	}
	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.Pair),
		Value: payload,
		Time:  report.FinishedAt,
	})
}

// DecodeReport parses a message produced by PublishReport.
func DecodeReport(msg kafka.Message) (models.CycleReport, error) {
	var report models.CycleReport
	if err := json.Unmarshal(msg.Value, &report); err != nil {
		return models.CycleReport{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}
