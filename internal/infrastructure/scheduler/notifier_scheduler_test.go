package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock returns a fixed time
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestNotifierScheduler_RunOnce(t *testing.T) {
	t.Run("passes the clock's time to the scan", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)}
		var got time.Time
		s := NewNotifierScheduler(time.Minute, func(ctx context.Context, now time.Time) error {
			got = now
			return nil
		}, clock, zap.NewNop())

		require.NoError(t, s.RunOnce(context.Background()))
		assert.Equal(t, clock.now, got)
		require.NotNil(t, s.LastRunAt())
		assert.Equal(t, clock.now, *s.LastRunAt())
	})

	t.Run("returns the scan error", func(t *testing.T) {
		scanErr := errors.New("store unavailable")
		s := NewNotifierScheduler(time.Minute, func(ctx context.Context, now time.Time) error {
			return scanErr
		}, nil, zap.NewNop())

		assert.ErrorIs(t, s.RunOnce(context.Background()), scanErr)
	})

	t.Run("contains a panicking scan", func(t *testing.T) {
		s := NewNotifierScheduler(time.Minute, func(ctx context.Context, now time.Time) error {
			panic("scan exploded")
		}, nil, zap.NewNop())

		err := s.RunOnce(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan panicked")
	})
}

func TestNotifierScheduler_StartStop(t *testing.T) {
	t.Run("runs the first scan immediately and keeps ticking", func(t *testing.T) {
		var calls atomic.Int32
		s := NewNotifierScheduler(10*time.Millisecond, func(ctx context.Context, now time.Time) error {
			calls.Add(1)
			return nil
		}, nil, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.True(t, s.IsRunning())

		assert.Eventually(t, func() bool {
			return calls.Load() >= 3
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, s.Stop())
		assert.False(t, s.IsRunning())
	})

	t.Run("a failing scan does not stop the loop", func(t *testing.T) {
		var calls atomic.Int32
		s := NewNotifierScheduler(10*time.Millisecond, func(ctx context.Context, now time.Time) error {
			calls.Add(1)
			return errors.New("transient failure")
		}, nil, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.Eventually(t, func() bool {
			return calls.Load() >= 2
		}, time.Second, 5*time.Millisecond)
		require.NoError(t, s.Stop())
	})

	t.Run("double start and stop are rejected", func(t *testing.T) {
		s := NewNotifierScheduler(time.Minute, func(ctx context.Context, now time.Time) error {
			return nil
		}, nil, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
		require.NoError(t, s.Stop())
		assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
	})

	t.Run("advancing the clock changes the scan time", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)}
		var mu sync.Mutex
		var seen []time.Time
		s := NewNotifierScheduler(time.Minute, func(ctx context.Context, now time.Time) error {
			mu.Lock()
			seen = append(seen, now)
			mu.Unlock()
			return nil
		}, clock, zap.NewNop())

		require.NoError(t, s.RunOnce(context.Background()))
		clock.set(clock.Now().AddDate(0, 0, 1))
		require.NoError(t, s.RunOnce(context.Background()))

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, seen, 2)
		assert.Equal(t, 24*time.Hour, seen[1].Sub(seen[0]))
	})
}
