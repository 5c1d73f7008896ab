package core

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of notifications into a single trailing flush:
// the callback runs only once a full quiet period of the configured interval
// has passed since the last Notify. The callback is never invoked
// concurrently with itself.
type Debouncer struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	runMu sync.Mutex
}

func NewDebouncer(interval time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		fn:       fn,
	}
}

// Notify marks the state dirty and re-arms the trailing timer, pushing the
// deadline out to now plus the full interval.
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.run()
}

// FlushNow cancels any pending timer and invokes the callback synchronously
// on the calling goroutine. It works after Stop, which is how the shutdown
// path drains a pending flush.
func (d *Debouncer) FlushNow() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.run()
}

// Stop cancels any pending flush without firing it, waits out an in-flight
// callback, and reports whether a flush was still pending. A notify racing
// the deadline may have dispatched the callback already; the run lock below
// makes sure it has finished before Stop returns.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	d.stopped = true
	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.runMu.Lock()
	d.runMu.Unlock()
	return pending
}

func (d *Debouncer) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn()
}
