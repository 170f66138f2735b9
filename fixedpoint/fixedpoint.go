// Package fixedpoint provides the scaled-integer arithmetic used by the spike
// source engine. Rates, inter-spike intervals, and countdowns are carried as
// s16.16 Real values so that the generation process is bit-reproducible and
// matches the 16.16 wire format of rate-update payloads. Probabilities such
// as exp(-lambda) are carried as u0.32 ULongFract values.
package fixedpoint

import (
	"log"
	"math"
)

// RealFracBits is the number of fractional bits in a Real.
const RealFracBits = 16

// A Real is a signed fixed-point number with 16 integer bits and 16
// fractional bits. The zero value is 0.0.
type Real int32

// Fixed Real constants.
const (
	RealOne Real = 1 << RealFracBits

	RealMax Real = math.MaxInt32
	RealMin Real = math.MinInt32
)

// RealFromFloat64 converts a float64 to the nearest representable Real,
// rounding half away from zero and saturating at the type bounds.
func RealFromFloat64(f float64) Real {
	scaled := f * float64(RealOne)

	var rounded float64
	if scaled >= 0 {
		rounded = math.Floor(scaled + 0.5)
	} else {
		rounded = math.Ceil(scaled - 0.5)
	}

	if rounded >= float64(RealMax) {
		return RealMax
	}
	if rounded <= float64(RealMin) {
		return RealMin
	}

	return Real(rounded)
}

// RealFromBits reinterprets a raw 16.16 wire word as a Real. Rate-update
// payloads carry rates in this format.
func RealFromBits(bits int32) Real {
	return Real(bits)
}

// Bits returns the raw 16.16 representation of the Real.
func (r Real) Bits() int32 {
	return int32(r)
}

// Float64 converts the Real to a float64.
func (r Real) Float64() float64 {
	return float64(r) / float64(RealOne)
}

// Mul multiplies two Reals, keeping the full 64-bit intermediate and rounding
// the result to the nearest representable value.
func (r Real) Mul(o Real) Real {
	p := int64(r) * int64(o)
	p += 1 << (RealFracBits - 1)
	return Real(p >> RealFracBits)
}

// MulULF multiplies a Real by a u0.32 fraction, rounding to nearest.
func (r Real) MulULF(u ULongFract) Real {
	p := int64(r) * int64(u)
	p += 1 << 31
	return Real(p >> 32)
}

// Exp returns e^r as a Real, saturating at the type bounds.
func Exp(r Real) Real {
	return RealFromFloat64(math.Exp(r.Float64()))
}

// Log returns the natural logarithm of r. Log panics on non-positive input,
// which is always a programming error in this codebase.
func Log(r Real) Real {
	if r <= 0 {
		log.Panic("log of non-positive fixed-point value")
	}

	return RealFromFloat64(math.Log(r.Float64()))
}

// ExpNegULF returns e^-r as a u0.32 fraction. Inputs at or below zero, whose
// exponential would reach 1.0, saturate at the largest representable
// fraction.
func ExpNegULF(r Real) ULongFract {
	if r <= 0 {
		return ULongFractMax
	}

	return ULongFractFromFloat64(math.Exp(-r.Float64()))
}

// A ULongFract is an unsigned fixed-point fraction with 32 fractional bits,
// representing values in [0, 1).
type ULongFract uint32

// ULongFractMax is the largest representable fraction, just below 1.0.
const ULongFractMax ULongFract = math.MaxUint32

// ULongFractFromFloat64 converts a float64 in [0, 1) to the nearest
// representable ULongFract, saturating at the type bounds.
func ULongFractFromFloat64(f float64) ULongFract {
	if f <= 0 {
		return 0
	}

	scaled := math.Floor(f*4294967296.0 + 0.5)
	if scaled >= 4294967296.0 {
		return ULongFractMax
	}

	return ULongFract(scaled)
}

// Float64 converts the fraction to a float64.
func (u ULongFract) Float64() float64 {
	return float64(u) / 4294967296.0
}

// IsZero reports whether the fraction is exactly zero.
func (u ULongFract) IsZero() bool {
	return u == 0
}

// Mul multiplies two u0.32 fractions, rounding to nearest.
func (u ULongFract) Mul(o ULongFract) ULongFract {
	p := uint64(u) * uint64(o)

	hi := p >> 32
	if p&(1<<31) != 0 {
		hi++
	}
	if hi > math.MaxUint32 {
		return ULongFractMax
	}

	return ULongFract(hi)
}
