// Package rng implements the deterministic pseudo-random stream that drives
// spike generation. The generator is Marsaglia's MARS KISS64 with a 4-word
// state. All sources of an instance draw from one shared stream, so the call
// order across sources and ticks is part of the observable contract:
// identical seed plus identical call sequence reproduces identical output.
package rng

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/spikesim/fixedpoint"
)

// maxCarry bounds the multiply-with-carry component of the state. A carry at
// or above this value degenerates the generator.
const maxCarry = 698769069

// A Seed is the 4-word MARS KISS64 state.
type Seed [4]uint32

// Validate reports whether the seed is usable. A zero xorshift word or an
// out-of-range carry collapses the corresponding sub-generator.
func (s Seed) Validate() error {
	if s[1] == 0 {
		return errors.New("rng: degenerate seed: xorshift word is zero")
	}

	if s[3] == 0 || s[3] >= maxCarry {
		return fmt.Errorf(
			"rng: degenerate seed: carry %d outside (0, %d)", s[3], maxCarry)
	}

	return nil
}

// A Stream is a MARS KISS64 generator. It operates directly on the caller's
// seed words so that persisting the seed captures the live stream position.
type Stream struct {
	state *Seed
}

// NewStream creates a stream over the given state. It fails on a degenerate
// seed; callers treat that as a fatal startup condition.
func NewStream(state *Seed) (*Stream, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	return &Stream{state: state}, nil
}

// Uint32 advances the stream and returns the next 32-bit draw.
func (s *Stream) Uint32() uint32 {
	st := s.state

	st[0] = 314527869*st[0] + 1234567

	st[1] ^= st[1] << 5
	st[1] ^= st[1] >> 7
	st[1] ^= st[1] << 22

	t := 4294584393*uint64(st[2]) + uint64(st[3])
	st[3] = uint32(t >> 32)
	st[2] = uint32(t)

	return st[0] + st[1] + st[2]
}

// uniform returns a variate in (0, 1].
func (s *Stream) uniform() float64 {
	return (float64(s.Uint32()) + 1) / 4294967296.0
}

// Exponential draws an exponentially distributed inter-spike interval,
// -ln(u) * mean, for the given mean interval in ticks.
func (s *Stream) Exponential(mean fixedpoint.Real) fixedpoint.Real {
	u := s.uniform()
	return fixedpoint.RealFromFloat64(-math.Log(u)).Mul(mean)
}

// PoissonExpMinusLambda draws a Poisson distributed count parameterized by
// e^-lambda, using Knuth's product-of-uniforms method. A zero parameter
// returns 0 without consuming randomness.
func (s *Stream) PoissonExpMinusLambda(eml fixedpoint.ULongFract) uint32 {
	if eml.IsZero() {
		return 0
	}

	bound := eml.Float64()
	k := uint32(0)
	p := 1.0

	for p > bound {
		k++
		p *= s.uniform()
	}

	return k - 1
}
