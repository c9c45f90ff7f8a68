package scheduler

import "context"

// Scheduler triggers runs on a fixed interval.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// RunFunc performs one run.
type RunFunc func(ctx context.Context) error
