package fabric

import (
	"runtime"
	"time"
)

// A Pacer spreads the packets an instance emits within one tick evenly across
// the tick's duration, reducing fabric contention when many instances fire
// simultaneously. At the start of each tick the anchor is set one spacing
// below the current down-counter value; each send busy-waits until the
// counter reaches the anchor, then moves the anchor down by one spacing.
//
// Sends have no deadline. If the fabric refuses indefinitely, SendPaced
// stalls tick completion; any watchdog lives outside this component.
type Pacer struct {
	clock      Clock
	spacing    uint32
	retryDelay time.Duration

	anchor uint32
}

// NewPacer creates a pacer over the given clock. spacing is the down-counter
// distance between consecutive packets; retryDelay is the fixed backoff
// between send attempts when the fabric refuses.
func NewPacer(clock Clock, spacing uint32, retryDelay time.Duration) *Pacer {
	return &Pacer{
		clock:      clock,
		spacing:    spacing,
		retryDelay: retryDelay,
	}
}

// StartTick anchors the pacing schedule to the current counter value.
func (p *Pacer) StartTick() {
	p.anchor = p.clock.Count() - p.spacing
}

// SendPaced waits for the pacing slot, then sends the spike, retrying with
// the fixed backoff until the fabric accepts it.
func (p *Pacer) SendPaced(port Port, s Spike) {
	for p.clock.Count() > p.anchor {
		runtime.Gosched()
	}
	p.anchor -= p.spacing

	for port.Send(s) != nil {
		time.Sleep(p.retryDelay)
	}
}
