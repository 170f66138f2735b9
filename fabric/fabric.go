// Package fabric models the shared event fabric that spike packets are
// transmitted onto, together with the pacing protocol that spreads an
// instance's packets evenly across a tick.
package fabric

// A Spike is one fire-and-forget event on the fabric. The tag is the
// instance's base key OR-ed with the local source id; there is no payload.
type Spike uint32

// A SendError is returned when the fabric refuses a packet. The sender is
// expected to retry.
type SendError struct{}

// NewSendError creates a new SendError.
func NewSendError() *SendError {
	return &SendError{}
}

// A Port accepts spike packets for transmission onto the fabric. Send is
// non-blocking and returns a SendError when the fabric refuses the packet.
type Port interface {
	Name() string
	Send(s Spike) *SendError
}

// A BufferedPort is a Port backed by a fixed-capacity queue. It stands in for
// the hardware transmit path: producers send without blocking, a consumer
// drains with Retrieve.
type BufferedPort struct {
	name string
	ch   chan Spike
}

// NewBufferedPort creates a port with the given queue capacity.
func NewBufferedPort(name string, capacity int) *BufferedPort {
	return &BufferedPort{
		name: name,
		ch:   make(chan Spike, capacity),
	}
}

// Name returns the name of the port.
func (p *BufferedPort) Name() string {
	return p.name
}

// Send enqueues a spike, or returns a SendError when the queue is full.
func (p *BufferedPort) Send(s Spike) *SendError {
	select {
	case p.ch <- s:
		return nil
	default:
		return NewSendError()
	}
}

// Retrieve dequeues the next spike. The second return value is false when the
// queue is empty.
func (p *BufferedPort) Retrieve() (Spike, bool) {
	select {
	case s := <-p.ch:
		return s, true
	default:
		return 0, false
	}
}

// Pending returns the number of queued spikes.
func (p *BufferedPort) Pending() int {
	return len(p.ch)
}
