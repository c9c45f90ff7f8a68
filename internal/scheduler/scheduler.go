package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
)

type implScheduler struct {
	interval time.Duration
	run      RunFunc
	logger   logger.Logger
	busy     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start triggers a run every interval until ctx is done or Stop is called.
// A tick that arrives while a run is still going is skipped.
func (s *implScheduler) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Scheduler started, running every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Waiting for the ongoing run to complete...")
			s.wg.Wait()
			s.logger.Info(ctx, "Scheduler stopped")
			return ctx.Err()

		case <-s.stop:
			s.wg.Wait()
			s.logger.Info(ctx, "Scheduler stopped")
			return nil

		case <-ticker.C:
			select {
			case s.busy <- struct{}{}:
				s.wg.Add(1)
				go func() {
					defer s.wg.Done()
					defer func() { <-s.busy }()

					if err := s.run(ctx); err != nil {
						s.logger.Error(ctx, "Scheduled run failed: %v", err)
					}
				}()
			default:
				s.logger.Warn(ctx, "Previous run still in progress, skipping tick")
			}
		}
	}
}

// Stop ends the schedule loop.
func (s *implScheduler) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
