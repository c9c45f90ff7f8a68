// Package events publishes run summaries to Kafka.
package events

import "context"

// Publisher publishes run events.
type Publisher interface {
	// PublishRun publishes summary keyed by runID.
	PublishRun(ctx context.Context, runID string, summary any) error
	Close() error
}
