package spikesource

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/sarchlab/spikesim/fabric"
	"github.com/sarchlab/spikesim/fixedpoint"
	"github.com/sarchlab/spikesim/hooking"
	"github.com/sarchlab/spikesim/recording"
	"github.com/sarchlab/spikesim/rng"
)

// HookPosSpikeSent marks when a spike packet has been transmitted onto the
// fabric. The hook item is the fabric.Spike.
var HookPosSpikeSent = &hooking.HookPos{Name: "Spike Sent"}

// HookPosTickEnd marks the end-of-tick housekeeping point. The hook item is
// the tick index.
var HookPosTickEnd = &hooking.HookPos{Name: "Tick End"}

// A Store persists the serialized source bank across pause/resume
// boundaries. The mechanism that ships the bytes off-node is outside this
// component.
type Store interface {
	Save(data []byte) error
	Load() ([]byte, error)
}

// A PauseHandler is notified when the instance reaches its configured run
// length and freezes tick progression. The external orchestration decides
// when to call Resume.
type PauseHandler interface {
	NotifyPaused(c *Comp)
}

// State is the scheduler state.
type State int32

// Scheduler states. Termination is a transient within the tick that reaches
// the run length; the instance is Paused afterwards until resumed.
const (
	StateRunning State = iota
	StatePaused
)

// A Comp is one spike source instance: the scheduler that advances the
// source bank one tick at a time. Tick is driven externally at the tick
// cadence; rate updates mutate the bank asynchronously through a
// RateUpdateHandler.
type Comp struct {
	hooking.HookableBase
	name string

	bank      *Bank
	stream    *rng.Stream
	recorder  *recording.Recorder
	collector recording.Collector

	port  fabric.Port
	pacer *fabric.Pacer

	store        Store
	pauseHandler PauseHandler

	sleep func(time.Duration)

	tick        atomic.Uint32
	runLength   uint32
	infiniteRun bool
	state       atomic.Int32
}

// Name returns the name of the instance.
func (c *Comp) Name() string {
	return c.name
}

// Bank returns the instance's source bank.
func (c *Comp) Bank() *Bank {
	return c.bank
}

// CurrentTick returns the current virtual time in ticks.
func (c *Comp) CurrentTick() uint32 {
	return c.tick.Load()
}

// State returns the scheduler state.
func (c *Comp) State() State {
	return State(c.state.Load())
}

// Tick advances the instance by one tick and processes every source. It
// returns false once the configured run length is reached; that terminal
// tick stores the bank state, notifies the pause handler, finalizes any
// pending recording flush, and rolls virtual time back by one so the tick
// re-executes identically after Resume.
func (c *Comp) Tick() bool {
	tick := c.tick.Add(1)

	if !c.infiniteRun && tick >= c.runLength {
		c.terminate()
		return false
	}

	if backoff := c.bank.params.RandomBackoffUs; backoff > 0 {
		c.sleep(time.Duration(backoff) * time.Microsecond)
	}

	if c.pacer != nil {
		c.pacer.StartTick()
	}

	if c.recorder != nil {
		c.recorder.Reset()
	}

	for localID := 0; localID < c.bank.NSources(); localID++ {
		c.updateSource(tick, localID)
	}

	if c.recorder != nil {
		c.recorder.Flush(tick, c.collector)
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosTickEnd,
			Item:   tick,
		})
	}

	return true
}

func (c *Comp) updateSource(tick uint32, localID int) {
	c.bank.mu.Lock()
	src := c.bank.sources[localID]
	c.bank.mu.Unlock()

	if src.IsFast {
		c.updateFastSource(tick, localID, src)
	} else {
		c.updateSlowSource(tick, localID, src)
	}
}

func (c *Comp) updateFastSource(tick uint32, localID int, src Source) {
	if !src.activeAt(tick) {
		return
	}

	count := c.stream.PoissonExpMinusLambda(src.ExpMinusLambda)
	if count == 0 {
		return
	}

	c.markSpikes(localID, int(count))

	if c.bank.params.HasKey {
		spike := fabric.Spike(c.bank.params.Key | uint32(localID))
		for i := uint32(0); i < count; i++ {
			c.sendSpike(spike)
		}
	}
}

func (c *Comp) updateSlowSource(tick uint32, localID int, src Source) {
	if !src.activeAt(tick) || src.MeanISITicks == 0 {
		return
	}

	if src.TimeToSpikeTicks <= 0 {
		c.markSpikes(localID, 1)

		if c.bank.params.HasKey {
			c.sendSpike(fabric.Spike(c.bank.params.Key | uint32(localID)))
		}

		delta := c.stream.Exponential(src.MeanISITicks)
		c.bank.mu.Lock()
		c.bank.sources[localID].TimeToSpikeTicks += delta
		c.bank.mu.Unlock()
	}

	c.bank.mu.Lock()
	c.bank.sources[localID].TimeToSpikeTicks -= fixedpoint.RealOne
	c.bank.mu.Unlock()
}

func (c *Comp) markSpikes(localID, nSpikes int) {
	if c.recorder != nil {
		c.recorder.Mark(localID, nSpikes)
	}
}

func (c *Comp) sendSpike(spike fabric.Spike) {
	c.pacer.SendPaced(c.port, spike)

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosSpikeSent,
			Item:   spike,
		})
	}
}

func (c *Comp) terminate() {
	if c.store != nil {
		if err := c.store.Save(SaveBank(c.bank)); err != nil {
			log.Panicf("failed to store source state: %v", err)
		}
	}

	c.state.Store(int32(StatePaused))

	if c.pauseHandler != nil {
		c.pauseHandler.NotifyPaused(c)
	}

	if c.recorder != nil {
		c.recorder.Finalize()
	}

	// Roll back so this tick re-executes identically after resume.
	c.tick.Add(^uint32(0))
}

// Resume reloads the source bank from the store, installs the run length for
// the next run segment, and unfreezes tick progression. The terminal tick
// that triggered the pause re-executes first. A reload failure is fatal.
func (c *Comp) Resume(runLength uint32, infiniteRun bool) {
	if c.store == nil {
		log.Panic("cannot resume an instance without a store")
	}

	data, err := c.store.Load()
	if err != nil {
		log.Panicf("failed to reload source state: %v", err)
	}

	if err := c.bank.Reload(data); err != nil {
		log.Panicf("failed to reload source state: %v", err)
	}

	c.runLength = runLength
	c.infiniteRun = infiniteRun
	c.state.Store(int32(StateRunning))
}
