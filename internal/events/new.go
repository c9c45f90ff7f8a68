package events

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/metrics"
	"github.com/segmentio/kafka-go"
)

const eventTypeRunSummary = "run_summary"

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	TopicRuns string
	Principal string
	Enabled   bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type implPublisher struct {
	writer    messageWriter
	principal string
	topic     string
	metrics   *metrics.Metrics
	l         logger.Logger
}

// New creates a Kafka publisher. When disabled or without brokers it only logs events.
func New(cfg Config, m *metrics.Metrics, l logger.Logger) Publisher {
	ctx := context.Background()
	p := &implPublisher{
		principal: cfg.Principal,
		topic:     cfg.TopicRuns,
		metrics:   m,
		l:         l,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		l.Info(ctx, "Kafka disabled, using log-only mode")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicRuns,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	l.Info(ctx, "Kafka publisher initialized: brokers=%v topic=%s principal=%s", cfg.Brokers, cfg.TopicRuns, cfg.Principal)
	return p
}
