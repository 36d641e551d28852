// Package debounce coalesces bursts of calls into a single trailing call.
//
// Each Trigger cancels whatever was scheduled before and reschedules the new
// function after the quiet period, so only the last write of a burst runs.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for text edits.
const DefaultDelay = 300 * time.Millisecond

// Debouncer schedules at most one pending call at a time.
// It is safe for concurrent use. The zero value is not usable; call New.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool

	running sync.WaitGroup
}

// New creates a Debouncer. A non-positive delay falls back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger cancels any pending call and schedules fn after the quiet period.
// It reports false when the Debouncer has been stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	return true
}

// fire runs the pending call if it is still the latest one scheduled.
// A timer that lost the race with Trigger, Flush or Stop sees a newer generation.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.take()
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	fn()
}

// take clears the pending call. Caller holds mu.
func (d *Debouncer) take() func() {
	fn := d.pending
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return fn
}

// Flush runs the pending call immediately on the caller's goroutine.
// It reports whether there was anything to run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || d.pending == nil {
		d.mu.Unlock()
		return false
	}
	fn := d.take()
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	fn()
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending call and rejects further triggers.
// It waits for a call that is already running to return, so it must not be
// called from inside a scheduled function. Stop is idempotent.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		d.take()
	}
	d.mu.Unlock()

	d.running.Wait()
}
