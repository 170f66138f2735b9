// Package spikesource implements the per-core Poisson spike source engine: a
// bank of independently rated sources, a tick-driven scheduler that draws
// spike counts and paces their transmission onto the event fabric, and the
// two rate-update ingestion paths that retune sources while the instance
// runs.
package spikesource

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/spikesim/fixedpoint"
	"github.com/sarchlab/spikesim/rng"
)

// ParamsSize is the encoded size of the instance parameter block in bytes.
const ParamsSize = 14 * 4

// Params is the read-only per-instance parameter block. It is populated at
// init from an external parameter block and round-tripped through the
// persistence layer at pause/resume boundaries. The seed words double as the
// live random stream state, so a stored block resumes the stream exactly.
type Params struct {
	// HasKey is true if there is a key to transmit with, false otherwise.
	HasKey bool

	// Key is the base key to send with; the local source id is OR-ed in.
	Key uint32

	// RateUpdateIDMask recovers the source id from a single-event rate
	// update key.
	RateUpdateIDMask uint32

	// RandomBackoffUs is the per-tick random backoff, in microseconds, that
	// desynchronizes instances sharing the fabric.
	RandomBackoffUs uint32

	// TimeBetweenSpikes is the down-counter spacing target between
	// consecutive transmitted spikes.
	TimeBetweenSpikes uint32

	// SecondsPerTick converts a rate in Hz to a rate per tick.
	SecondsPerTick fixedpoint.ULongFract

	// TicksPerSecond sets the mean inter-spike interval of slow sources.
	TicksPerSecond fixedpoint.Real

	// SlowRateCutoff is the border rate between slow and fast sources.
	SlowRateCutoff fixedpoint.Real

	// FirstSourceID is the id of the first source relative to the
	// population as a whole.
	FirstSourceID uint32

	// NSources is the number of sources in this instance.
	NSources uint32

	// Seed is the random generator state.
	Seed rng.Seed
}

// DecodeParams reads a parameter block from its wire layout.
func DecodeParams(data []byte) (Params, error) {
	if len(data) < ParamsSize {
		return Params{}, fmt.Errorf(
			"spikesource: parameter block truncated: %d bytes, need %d",
			len(data), ParamsSize)
	}

	word := func(i int) uint32 {
		return binary.LittleEndian.Uint32(data[4*i:])
	}

	p := Params{
		HasKey:            word(0) != 0,
		Key:               word(1),
		RateUpdateIDMask:  word(2),
		RandomBackoffUs:   word(3),
		TimeBetweenSpikes: word(4),
		SecondsPerTick:    fixedpoint.ULongFract(word(5)),
		TicksPerSecond:    fixedpoint.RealFromBits(int32(word(6))),
		SlowRateCutoff:    fixedpoint.RealFromBits(int32(word(7))),
		FirstSourceID:     word(8),
		NSources:          word(9),
		Seed:              rng.Seed{word(10), word(11), word(12), word(13)},
	}

	return p, nil
}

// Encode serializes the parameter block into its wire layout.
func (p Params) Encode() []byte {
	out := make([]byte, ParamsSize)

	word := func(i int, v uint32) {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}

	hasKey := uint32(0)
	if p.HasKey {
		hasKey = 1
	}

	word(0, hasKey)
	word(1, p.Key)
	word(2, p.RateUpdateIDMask)
	word(3, p.RandomBackoffUs)
	word(4, p.TimeBetweenSpikes)
	word(5, uint32(p.SecondsPerTick))
	word(6, uint32(p.TicksPerSecond.Bits()))
	word(7, uint32(p.SlowRateCutoff.Bits()))
	word(8, p.FirstSourceID)
	word(9, p.NSources)
	word(10, p.Seed[0])
	word(11, p.Seed[1])
	word(12, p.Seed[2])
	word(13, p.Seed[3])

	return out
}
