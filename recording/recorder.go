// Package recording accumulates the spikes an instance produces each tick
// into a growable bank of bitsets and hands completed ticks to a collector
// with a single-outstanding-flush discipline.
package recording

import (
	"encoding/binary"
	"sync"
)

// A Record is one flushed tick of spike history. Words holds BufferCount
// bitsets of WordsPerBuffer(nSources) words each; bit b set in bitset k means
// source b produced at least k+1 spikes this tick.
type Record struct {
	Tick        uint32
	BufferCount uint32
	Words       []uint32
}

// WordsPerBuffer returns the number of 32-bit words needed for one bit per
// source.
func WordsPerBuffer(nSources int) int {
	return (nSources + 31) / 32
}

// Encode serializes the record in its wire layout: tick, buffer count, then
// the bitset words, all little-endian.
func (r Record) Encode() []byte {
	out := make([]byte, 8+4*len(r.Words))

	binary.LittleEndian.PutUint32(out[0:], r.Tick)
	binary.LittleEndian.PutUint32(out[4:], r.BufferCount)
	for i, w := range r.Words {
		binary.LittleEndian.PutUint32(out[8+4*i:], w)
	}

	return out
}

// A Collector receives flushed records. Collect may complete asynchronously;
// implementations must call done exactly once when the record has been taken
// over, which releases the recorder for the next flush.
type Collector interface {
	Collect(rec Record, done func())
}

// A Recorder accumulates spike marks for the current tick. The bitset bank
// grows monotonically over the instance lifetime and is never shrunk; its
// logical content is transient per tick. At most one flush is outstanding at
// a time, and growth is blocked while a flush is in flight.
type Recorder struct {
	mu       sync.Mutex
	ready    *sync.Cond
	inFlight bool

	nSources       int
	wordsPerBuffer int
	allocated      int
	used           int
	words          []uint32
}

// NewRecorder creates a recorder for an instance with nSources sources.
func NewRecorder(nSources int) *Recorder {
	r := &Recorder{
		nSources:       nSources,
		wordsPerBuffer: WordsPerBuffer(nSources),
	}
	r.ready = sync.NewCond(&r.mu)

	return r
}

// Mark records that the given source produced nSpikes spikes this tick: bit
// localID is set in every bitset below nSpikes. The bank grows when nSpikes
// exceeds the allocated buffer count, copying all previously set bits forward
// exactly; growth waits for any in-flight flush to complete first.
func (r *Recorder) Mark(localID int, nSpikes int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if nSpikes > r.allocated {
		for r.inFlight {
			r.ready.Wait()
		}

		grown := make([]uint32, nSpikes*r.wordsPerBuffer)
		copy(grown, r.words)
		r.words = grown
		r.allocated = nSpikes
	}

	if r.used < nSpikes {
		r.used = nSpikes
	}

	for n := nSpikes; n > 0; n-- {
		r.buffer(n-1)[localID/32] |= 1 << (localID % 32)
	}
}

// buffer returns the n-th bitset. Callers must hold mu.
func (r *Recorder) buffer(n int) []uint32 {
	start := n * r.wordsPerBuffer
	return r.words[start : start+r.wordsPerBuffer]
}

// Flush hands the current tick's content to the collector and resets the
// logical content for the next tick. An empty recorder flushes nothing. If a
// flush is already in flight, Flush waits for it to complete first; there is
// no queue of pending flushes.
func (r *Recorder) Flush(tick uint32, c Collector) {
	r.mu.Lock()

	for r.inFlight {
		r.ready.Wait()
	}

	if r.used == 0 {
		r.mu.Unlock()
		return
	}

	rec := Record{
		Tick:        tick,
		BufferCount: uint32(r.used),
		Words:       make([]uint32, r.used*r.wordsPerBuffer),
	}
	copy(rec.Words, r.words)

	r.inFlight = true
	r.reset()
	r.mu.Unlock()

	c.Collect(rec, r.flushDone)
}

func (r *Recorder) flushDone() {
	r.mu.Lock()
	r.inFlight = false
	r.ready.Broadcast()
	r.mu.Unlock()
}

// reset clears the logical content without deallocating. Callers must hold
// mu.
func (r *Recorder) reset() {
	r.used = 0
	for i := range r.words {
		r.words[i] = 0
	}
}

// Reset clears any marks accumulated for the current tick.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
}

// Finalize blocks until no flush is in flight. It is called when tick
// progression stops, so that the last record reaches the collector before
// the instance pauses.
func (r *Recorder) Finalize() {
	r.mu.Lock()
	for r.inFlight {
		r.ready.Wait()
	}
	r.mu.Unlock()
}

// Allocated returns the number of bitsets currently allocated.
func (r *Recorder) Allocated() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.allocated
}

// Pending returns the number of bitsets in use this tick.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.used
}

// Bit reports whether the given source is marked in the given bitset.
func (r *Recorder) Bit(buffer, localID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buffer >= r.allocated {
		return false
	}

	return r.buffer(buffer)[localID/32]&(1<<(localID%32)) != 0
}
