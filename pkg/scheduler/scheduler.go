package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ReorderScanner finds parts below their minimum stock level and notifies the
// parts desk. It returns how many parts were low.
type ReorderScanner interface {
	SendReorderDigest(ctx context.Context) (int, error)
}

// Scheduler runs the reorder scan on a fixed interval
type Scheduler struct {
	scanner ReorderScanner
	logger  *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new Scheduler
func NewScheduler(scanner ReorderScanner, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		scanner: scanner,
		logger:  logger,
	}
}

// Start runs one scan immediately and then one every interval until Stop is
// called. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil || interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Infof("Reorder scheduler started, scanning every %s", interval)
		s.scan(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scan(ctx)
			}
		}
	}()
}

// Stop cancels the running scan loop and waits for it to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("Reorder scheduler stopped")
}

func (s *Scheduler) scan(ctx context.Context) {
	count, err := s.scanner.SendReorderDigest(ctx)
	if err != nil {
		s.logger.Errorf("Reorder scan failed: %v", err)
		return
	}
	if count > 0 {
		s.logger.WithField("low_stock_parts", count).Info("Reorder digest sent")
	}
}
