// Package scheduler provides the coalescing deferred task behind autosave.
package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer runs a task once after a quiet period. Every Trigger cancels the
// pending run and schedules a new one, so the task fires at most once per
// quiet period.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration
	task  func()

	mu         sync.Mutex
	timer      *clock.Timer
	generation uint64
	stopped    bool
}

// NewDebouncer creates a debouncer; a nil clock means the wall clock
func NewDebouncer(clk clock.Clock, delay time.Duration, task func()) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{
		clock: clk,
		delay: delay,
		task:  task,
	}
}

// Trigger (re)starts the quiet period
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	generation := d.generation
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(generation)
	})
}

// Pending reports whether a run is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending run; later triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}

func (d *Debouncer) fire(generation uint64) {
	d.mu.Lock()
	// a timer that lost the race with Stop or a newer Trigger
	if generation != d.generation || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.task()
}
