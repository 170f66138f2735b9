package spikesource

import (
	"log"
	"time"

	"github.com/sarchlab/spikesim/fabric"
	"github.com/sarchlab/spikesim/recording"
	"github.com/sarchlab/spikesim/rng"
)

// A Builder can build spike source instances.
type Builder struct {
	params  Params
	sources []Source
	bank    *Bank

	port      fabric.Port
	clock     fabric.Clock
	collector recording.Collector

	store        Store
	pauseHandler PauseHandler

	runLength   uint32
	infiniteRun bool

	retryDelay time.Duration
	sleep      func(time.Duration)
}

// MakeBuilder returns a Builder with default configuration: an infinite run,
// a 1us fabric retry backoff, and no recording.
func MakeBuilder() Builder {
	return Builder{
		infiniteRun: true,
		retryDelay:  time.Microsecond,
		sleep:       time.Sleep,
	}
}

// WithParams sets the instance parameter block and the initial source
// records. Slow sources receive an initial inter-spike interval draw at
// build time.
func (b Builder) WithParams(params Params, sources []Source) Builder {
	b.params = params
	b.sources = sources
	b.bank = nil
	return b
}

// WithBank sets a pre-populated bank, typically reloaded from a store. No
// initial inter-spike interval draws are made; the records are used as-is.
func (b Builder) WithBank(bank *Bank) Builder {
	b.bank = bank
	return b
}

// WithFabricPort sets the port spikes are transmitted on. Required when the
// instance has a key.
func (b Builder) WithFabricPort(port fabric.Port) Builder {
	b.port = port
	return b
}

// WithClock sets the pacing clock. Defaults to a wall-clock timer with a 1ms
// period.
func (b Builder) WithClock(clock fabric.Clock) Builder {
	b.clock = clock
	return b
}

// WithCollector enables recording into the given collector.
func (b Builder) WithCollector(collector recording.Collector) Builder {
	b.collector = collector
	return b
}

// WithStore sets the persistence store used at pause/resume boundaries.
func (b Builder) WithStore(store Store) Builder {
	b.store = store
	return b
}

// WithPauseHandler sets the handler notified when the run length is reached.
func (b Builder) WithPauseHandler(handler PauseHandler) Builder {
	b.pauseHandler = handler
	return b
}

// WithRunLength configures a finite run of the given number of ticks.
func (b Builder) WithRunLength(ticks uint32) Builder {
	b.runLength = ticks
	b.infiniteRun = false
	return b
}

// WithRetryDelay sets the fixed backoff between fabric send attempts.
func (b Builder) WithRetryDelay(d time.Duration) Builder {
	b.retryDelay = d
	return b
}

// WithSleepFunc replaces the function used for the per-tick random backoff.
// Tests use this to avoid real sleeps.
func (b Builder) WithSleepFunc(sleep func(time.Duration)) Builder {
	b.sleep = sleep
	return b
}

// Build builds a spike source instance. A degenerate random seed or an
// inconsistent configuration is fatal.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		name:         name,
		collector:    b.collector,
		store:        b.store,
		pauseHandler: b.pauseHandler,
		runLength:    b.runLength,
		infiniteRun:  b.infiniteRun,
		sleep:        b.sleep,
	}

	freshBank := b.bank == nil
	if freshBank {
		bank, err := NewBank(b.params, b.sources)
		if err != nil {
			log.Panic(err)
		}
		c.bank = bank
	} else {
		c.bank = b.bank
	}

	stream, err := rng.NewStream(&c.bank.params.Seed)
	if err != nil {
		log.Panic(err)
	}
	c.stream = stream

	if c.bank.params.HasKey {
		if b.port == nil {
			log.Panic("a keyed instance requires a fabric port")
		}

		clock := b.clock
		if clock == nil {
			clock = fabric.NewTimerClock(time.Millisecond)
		}

		c.port = b.port
		c.pacer = fabric.NewPacer(
			clock, c.bank.params.TimeBetweenSpikes, b.retryDelay)
	}

	if b.collector != nil {
		c.recorder = recording.NewRecorder(c.bank.NSources())
	}

	if freshBank {
		c.seedSlowSources()
	}

	// Start the virtual time at "-1" so that the first tick will be 0.
	c.tick.Store(^uint32(0))

	return c
}

// seedSlowSources draws the first time-to-spike for every slow source,
// consuming the shared stream in ascending local-id order.
func (c *Comp) seedSlowSources() {
	for i := range c.bank.sources {
		src := &c.bank.sources[i]
		if !src.IsFast {
			src.TimeToSpikeTicks = c.stream.Exponential(src.MeanISITicks)
		}
	}
}
