package scheduler_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/scheduler"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out the waits requested by the poller and releases them
// on demand, so cadence assertions run without real sleeps.
type fakeClock struct {
	mu      sync.Mutex
	waits   []time.Duration
	release chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{release: make(chan time.Time)}
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, 0) }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()
	return c.release
}

func (c *fakeClock) requested() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waits))
	copy(out, c.waits)
	return out
}

func (c *fakeClock) tick() { c.release <- time.Time{} }

func TestPollerDoublesWaitAfterFailureOnce(t *testing.T) {
	clock := newFakeClock()

	var mu sync.Mutex
	calls := 0
	cycle := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return fmt.Errorf("upstream unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := scheduler.NewPoller("ingest", 15*time.Second, cycle, clock)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	clock.tick() // release the post-failure wait
	clock.tick() // release the wait after the first success
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	waits := clock.requested()
	require.GreaterOrEqual(t, len(waits), 2)
	require.Equal(t, 30*time.Second, waits[0], "failed cycle must wait twice the interval")
	require.Equal(t, 15*time.Second, waits[1], "cadence must return to normal after one long wait")

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, calls, 2)
}

func TestPollerStopsDuringWait(t *testing.T) {
	clock := newFakeClock()

	cycle := func(ctx context.Context) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	p := scheduler.NewPoller("ingest", time.Hour, cycle, clock)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// let the first cycle run and park in the wait, then cancel
	require.Eventually(t, func() bool { return len(clock.requested()) == 1 },
		2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop while waiting")
	}
}

func TestPollerDefaultsToSystemClock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	p := scheduler.NewPoller("noop", time.Millisecond, func(ctx context.Context) error {
		ran = true
		return nil
	}, nil)

	// already-cancelled context returns before the first cycle
	p.Run(ctx)
	require.False(t, ran)
}
