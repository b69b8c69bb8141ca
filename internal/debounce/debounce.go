// Package debounce runs the last of a burst of scheduled tasks after a quiet period.
//
// Every Schedule call gets a monotonically increasing generation number.
// A task whose generation is no longer current when it fires, or when it
// finishes its own async work, should discard its result; Current reports that.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Task is the unit of work run once the delay has passed without a newer Schedule
type Task func(ctx context.Context, gen uint64)

// Debouncer schedules at most one pending Task at a time
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Debouncer. A non-positive delay runs tasks on the next timer tick.
func New(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		delay:  delay,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule supersedes any pending task and returns the new generation.
// After Stop it does nothing and returns 0.
func (d *Debouncer) Schedule(task Task) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return 0
	}

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if !d.Current(gen) {
			return
		}
		task(d.ctx, gen)
	})
	return gen
}

// Cancel drops the pending task and makes every in-flight generation stale
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop tears the debouncer down. Pending tasks never run and the context
// handed to running tasks is cancelled.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.cancel()
}

// Current reports whether gen is still the latest scheduled generation
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.stopped && gen == d.gen
}

// Generation returns the latest generation number
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Delay returns the configured quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
