package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

func (p *implPublisher) PublishRun(ctx context.Context, runID string, summary any) error {
	start := time.Now()

	payload, err := json.Marshal(summary)
	if err != nil {
		p.l.Error(ctx, "Failed to marshal run event %s: %v", runID, err)
		return err
	}

	p.l.Debug(ctx, "Publishing run event %s to %s (%d bytes)", runID, p.topic, len(payload))

	if p.writer == nil {
		p.record(nil, start)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(runID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventTypeRunSummary)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.l.Error(ctx, "Failed to write run event %s to Kafka topic %s: %v", runID, p.topic, err)
		p.record(err, start)
		return err
	}

	p.record(nil, start)
	return nil
}

func (p *implPublisher) record(err error, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(p.topic, eventTypeRunSummary, err, time.Since(start).Seconds())
	}
}

func (p *implPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.l.Error(context.Background(), "Error closing Kafka writer: %v", err)
		return err
	}
	return nil
}
