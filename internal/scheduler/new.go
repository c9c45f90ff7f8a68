package scheduler

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
)

// New creates a Scheduler that calls run every interval.
func New(interval time.Duration, run RunFunc, log logger.Logger) (Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive, got %s", interval)
	}

	return &implScheduler{
		interval: interval,
		run:      run,
		logger:   log,
		busy:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}, nil
}
