package spikesource

import (
	"sync"
	"time"
)

// A Runner drives a spike source instance at a fixed wall-clock tick cadence.
// It can be paused and continued from another goroutine, typically from a
// monitoring server.
type Runner struct {
	comp   *Comp
	period time.Duration

	pauseLock sync.Mutex
}

// NewRunner creates a Runner that calls Tick on the instance once per period.
func NewRunner(comp *Comp, period time.Duration) *Runner {
	return &Runner{
		comp:   comp,
		period: period,
	}
}

// Comp returns the instance being driven.
func (r *Runner) Comp() *Comp {
	return r.comp
}

// Pause stops tick progression until Continue is called. The current tick
// completes first.
func (r *Runner) Pause() {
	r.pauseLock.Lock()
}

// Continue resumes tick progression after a Pause.
func (r *Runner) Continue() {
	r.pauseLock.Unlock()
}

// CurrentTick returns the instance's current virtual time in ticks.
func (r *Runner) CurrentTick() uint32 {
	return r.comp.CurrentTick()
}

// Run drives the instance until it reaches its run length. It returns the
// number of ticks executed in this segment.
func (r *Runner) Run() uint32 {
	executed := uint32(0)
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for range ticker.C {
		r.pauseLock.Lock()
		alive := r.comp.Tick()
		r.pauseLock.Unlock()

		if !alive {
			return executed
		}
		executed++
	}

	return executed
}
