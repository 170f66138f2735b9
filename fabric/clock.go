package fabric

import (
	"sync"
	"time"
)

// A Clock exposes the live hardware down-counter that paces transmission. The
// count decreases within each timer period and reloads at the period
// boundary. Arithmetic on counts wraps at 32 bits, matching the counter
// register.
type Clock interface {
	Count() uint32
}

// NewTimerClock creates a Clock backed by the wall clock. The count reports
// the nanoseconds remaining in the current period.
func NewTimerClock(period time.Duration) Clock {
	return &timerClock{
		epoch:  time.Now(),
		period: period,
	}
}

type timerClock struct {
	epoch  time.Time
	period time.Duration
}

func (c *timerClock) Count() uint32 {
	elapsed := time.Since(c.epoch) % c.period
	return uint32((c.period - elapsed).Nanoseconds())
}

// A ManualClock is a Clock whose count is set explicitly. It decouples pacing
// tests from real time.
type ManualClock struct {
	mu    sync.Mutex
	count uint32
}

// SetCount sets the value returned by Count.
func (c *ManualClock) SetCount(v uint32) {
	c.mu.Lock()
	c.count = v
	c.mu.Unlock()
}

// Count returns the configured value.
func (c *ManualClock) Count() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count
}
