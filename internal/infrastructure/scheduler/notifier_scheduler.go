package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ScanFunc runs one full notification scan pass at the given time
type ScanFunc func(ctx context.Context, now time.Time) error

// NotifierScheduler drives the recurring notification scans. Each tick runs
// one scan pass to completion before the next tick is considered; a tick
// that outlives the interval delays the next one rather than overlapping
// it. Scan failures are logged and the loop keeps going, so a transient
// store outage never kills the scheduler.
type NotifierScheduler struct {
	interval time.Duration
	scan     ScanFunc
	clock    Clock
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	lastRunAt *time.Time
}

// NewNotifierScheduler creates a new notifier scheduler
func NewNotifierScheduler(interval time.Duration, scan ScanFunc, clock Clock, logger *zap.Logger) *NotifierScheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &NotifierScheduler{
		interval: interval,
		scan:     scan,
		clock:    clock,
		logger:   logger.Named("notifier-scheduler"),
	}
}

// Start launches the tick loop. The first scan runs immediately.
func (s *NotifierScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.isRunning = true

	s.wg.Add(1)
	go s.run(runCtx)

	s.logger.Info("notifier scheduler started",
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop halts the tick loop and waits for an in-flight scan to finish
func (s *NotifierScheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("notifier scheduler stopped")
	return nil
}

// IsRunning reports whether the tick loop is active
func (s *NotifierScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRunAt returns when the last scan pass started, if any
func (s *NotifierScheduler) LastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

// RunOnce executes a single scan pass, containing panics. Exposed so a
// manual trigger and the tick loop share the same path.
func (s *NotifierScheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()

	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	err := s.safeScan(ctx, now)
	if err != nil {
		s.logger.Error("notification scan failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *NotifierScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_ = s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// safeScan invokes the scan func with panic containment
func (s *NotifierScheduler) safeScan(ctx context.Context, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panicked: %v", r)
		}
	}()
	return s.scan(ctx, now)
}
