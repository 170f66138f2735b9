package spikesource

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/sarchlab/spikesim/fixedpoint"
)

// SourceSize is the encoded size of one source record in bytes.
const SourceSize = 6 * 4

// A Source is the state of one simulated spike source. Exactly one of
// ExpMinusLambda and MeanISITicks is semantically active, selected by IsFast.
type Source struct {
	// StartTick and EndTick bound the active window, half-open
	// [StartTick, EndTick).
	StartTick uint32
	EndTick   uint32

	// IsFast selects the generation regime. Fast sources draw a spike count
	// per tick; slow sources count down an exponentially distributed
	// inter-spike interval.
	IsFast bool

	// ExpMinusLambda is e^-(rate per tick), used only when fast.
	ExpMinusLambda fixedpoint.ULongFract

	// MeanISITicks is the mean inter-spike interval in ticks, used only
	// when slow.
	MeanISITicks fixedpoint.Real

	// TimeToSpikeTicks counts down to the next slow-mode spike. It is
	// continuous across ticks and across rate changes.
	TimeToSpikeTicks fixedpoint.Real
}

// activeAt reports whether the source generates spikes at the given tick.
func (s *Source) activeAt(tick uint32) bool {
	return tick >= s.StartTick && tick < s.EndTick
}

// DecodeSource reads one source record from its wire layout.
func DecodeSource(data []byte) (Source, error) {
	if len(data) < SourceSize {
		return Source{}, fmt.Errorf(
			"spikesource: source record truncated: %d bytes, need %d",
			len(data), SourceSize)
	}

	word := func(i int) uint32 {
		return binary.LittleEndian.Uint32(data[4*i:])
	}

	s := Source{
		StartTick:        word(0),
		EndTick:          word(1),
		IsFast:           word(2) != 0,
		ExpMinusLambda:   fixedpoint.ULongFract(word(3)),
		MeanISITicks:     fixedpoint.RealFromBits(int32(word(4))),
		TimeToSpikeTicks: fixedpoint.RealFromBits(int32(word(5))),
	}

	return s, nil
}

// Encode serializes the source record into its wire layout.
func (s Source) Encode() []byte {
	out := make([]byte, SourceSize)

	word := func(i int, v uint32) {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}

	isFast := uint32(0)
	if s.IsFast {
		isFast = 1
	}

	word(0, s.StartTick)
	word(1, s.EndTick)
	word(2, isFast)
	word(3, uint32(s.ExpMinusLambda))
	word(4, uint32(s.MeanISITicks.Bits()))
	word(5, uint32(s.TimeToSpikeTicks.Bits()))

	return out
}

// A Bank holds the instance parameters and the per-source state records. The
// scheduler and the rate-update path share it through a short critical
// section around field mutation; a rate update landing mid-tick may apply to
// a source the scheduler has already visited this tick, which is tolerated
// and converges on the next tick.
type Bank struct {
	mu      sync.Mutex
	params  Params
	sources []Source
}

// NewBank creates a bank. The source count must match the parameter block.
func NewBank(params Params, sources []Source) (*Bank, error) {
	if uint32(len(sources)) != params.NSources {
		return nil, fmt.Errorf(
			"spikesource: %d source records for %d declared sources",
			len(sources), params.NSources)
	}

	return &Bank{
		params:  params,
		sources: sources,
	}, nil
}

// Params returns a copy of the instance parameters.
func (b *Bank) Params() Params {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.params
}

// NSources returns the number of sources in the bank.
func (b *Bank) NSources() int {
	return len(b.sources)
}

// Source returns a copy of the source record with the given local id.
func (b *Bank) Source(localID int) Source {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sources[localID]
}

// SetRate reclassifies the source with the given local id for a new rate in
// Hz. A rate strictly above the cutoff selects the fast regime; a rate at or
// below it, the slow one. The countdown to the next slow spike is left
// untouched: a rate change mid-decay keeps counting down the phase drawn
// under the old rate.
func (b *Bank) SetRate(localID int, rate fixedpoint.Real) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src := &b.sources[localID]
	ratePerTick := rate.MulULF(b.params.SecondsPerTick)

	if rate > b.params.SlowRateCutoff {
		src.IsFast = true
		src.ExpMinusLambda = fixedpoint.ExpNegULF(ratePerTick)
	} else {
		src.IsFast = false
		src.MeanISITicks = rate.Mul(b.params.TicksPerSecond)
	}
}

// ApplyRate applies a rate update addressed by global source id. Updates for
// ids outside this instance's assigned range are dropped silently.
func (b *Bank) ApplyRate(globalID uint32, rate fixedpoint.Real) {
	first := b.params.FirstSourceID
	if globalID < first || globalID-first >= b.params.NSources {
		return
	}

	b.SetRate(int(globalID-first), rate)
}
