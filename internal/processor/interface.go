package processor

import (
	"context"
	"errors"
	"time"
)

// ErrRunInProgress is returned when a pass is requested while another is running.
var ErrRunInProgress = errors.New("a processing run is already in progress")

// Processor runs classification passes over every configured user.
type Processor interface {
	// Run performs one pass. Per-file and per-user failures are recorded in
	// the summary; an error means the pass could not start.
	Run(ctx context.Context) (*RunSummary, error)
}

// EventPublisher receives the summary of every finished run.
type EventPublisher interface {
	PublishRun(ctx context.Context, runID string, summary any) error
}

// Clock abstracts time so runs can be tested.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
