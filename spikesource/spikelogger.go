package spikesource

import (
	"log"

	"github.com/sarchlab/spikesim/fabric"
	"github.com/sarchlab/spikesim/hooking"
)

// SpikeLogger is a hook that prints every spike packet an instance transmits.
type SpikeLogger struct {
	hooking.LogHookBase
}

// NewSpikeLogger returns a new SpikeLogger which will write into the logger.
func NewSpikeLogger(logger *log.Logger) *SpikeLogger {
	h := new(SpikeLogger)
	h.Logger = logger
	return h
}

// Func writes the spike information into the logger.
func (h *SpikeLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosSpikeSent {
		return
	}

	spike, ok := ctx.Item.(fabric.Spike)
	if !ok {
		return
	}

	h.Logger.Printf("%d,%s,0x%08x\n",
		ctx.Domain.(*Comp).CurrentTick(),
		ctx.Domain.(*Comp).Name(),
		uint32(spike))
}
