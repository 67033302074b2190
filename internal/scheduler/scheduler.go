package scheduler

import (
	"context"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Clock abstracts the wall clock so the poller cadence is testable
// without real waits.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// System is the real wall clock.
var System Clock = systemClock{}

// CycleFunc is one unit of scheduled work.
type CycleFunc func(ctx context.Context) error

// Poller runs a cycle on a fixed cadence. A failed cycle stretches the
// following wait to twice the interval, once; the normal cadence resumes
// with the next attempt. Cycles never overlap themselves, but a manually
// triggered run elsewhere may execute concurrently; the storage layer's
// insert-only semantics make that safe.
type Poller struct {
	name     string
	interval time.Duration
	cycle    CycleFunc
	clock    Clock
}

// NewPoller builds a poller. A nil clock selects the system clock.
func NewPoller(name string, interval time.Duration, cycle CycleFunc, clock Clock) *Poller {
	if clock == nil {
		clock = System
	}
	return &Poller{
		name:     name,
		interval: interval,
		cycle:    cycle,
		clock:    clock,
	}
}

// Run executes cycles until ctx is cancelled. The wait between cycles is
// interruptible, so shutdown never blocks on a pending interval.
func (p *Poller) Run(ctx context.Context) {
	nuts.L.Infof("[Scheduler] %s started (every %v)", p.name, p.interval)

	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[Scheduler] %s stopped", p.name)
			return
		default:
		}

		wait := p.interval
		if err := p.cycle(ctx); err != nil {
			nuts.L.Errorf("[Scheduler] %s cycle failed: %v", p.name, err)
			wait = 2 * p.interval
		}

		select {
		case <-ctx.Done():
			nuts.L.Infof("[Scheduler] %s stopped", p.name)
			return
		case <-p.clock.After(wait):
		}
	}
}
