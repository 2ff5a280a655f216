// Package debounce delays a call until its input has been stable for a
// fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the search-box debounce interval.
const DefaultDelay = 300 * time.Millisecond

// Debouncer calls fn with the latest value passed to Trigger once no newer
// value has arrived for the configured delay. A superseded value is never
// delivered. fn runs on its own goroutine, one call at a time.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	gen     uint64
	stopped bool
	running sync.WaitGroup
	callMu  sync.Mutex
}

// New returns a Debouncer. A non-positive delay selects DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the countdown. It is a no-op after Stop.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = v
	d.armed = true
	d.gen++
	gen := d.gen

	d.stopTimer()
	d.running.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.running.Done()
		d.fire(gen)
	})
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.armed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.mu.Unlock()

	d.callMu.Lock()
	defer d.callMu.Unlock()
	d.fn(v)
}

// Flush delivers a pending value immediately on the caller's goroutine.
// It reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.armed {
		d.mu.Unlock()
		return false
	}
	v := d.pending
	d.armed = false
	d.gen++
	d.stopTimer()
	d.mu.Unlock()

	d.callMu.Lock()
	defer d.callMu.Unlock()
	d.fn(v)
	return true
}

// Stop cancels any pending call and waits for an in-progress call to
// return. Trigger after Stop does nothing.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.armed = false
	d.stopTimer()
	d.mu.Unlock()
	d.running.Wait()
}

// stopTimer cancels the scheduled callback. A callback that was cancelled
// before it started will never call running.Done, so it is done here.
// Callers hold mu.
func (d *Debouncer[T]) stopTimer() {
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.timer = nil
}
