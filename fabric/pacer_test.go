package fabric_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/spikesim/fabric"
)

var _ = Describe("Pacer", func() {
	var (
		clock *fabric.ManualClock
		port  *fabric.BufferedPort
		pacer *fabric.Pacer
	)

	BeforeEach(func() {
		clock = &fabric.ManualClock{}
		port = fabric.NewBufferedPort("Instance0.SpikePort", 16)
		pacer = fabric.NewPacer(clock, 100, time.Microsecond)
	})

	It("should send immediately once the counter reaches the anchor", func() {
		clock.SetCount(1000)
		pacer.StartTick()

		clock.SetCount(900)
		pacer.SendPaced(port, fabric.Spike(7))

		s, ok := port.Retrieve()
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(fabric.Spike(7)))
	})

	It("should step the anchor down by one spacing per packet", func() {
		clock.SetCount(1000)
		pacer.StartTick()

		// Anchor starts at 900, then 800 for the second packet.
		clock.SetCount(850)
		pacer.SendPaced(port, fabric.Spike(1))

		clock.SetCount(790)
		pacer.SendPaced(port, fabric.Spike(2))

		Expect(port.Pending()).To(Equal(2))
	})

	It("should busy-wait until the counter falls to the anchor", func() {
		clock.SetCount(1000)
		pacer.StartTick()
		clock.SetCount(950)

		done := make(chan struct{})
		go func() {
			pacer.SendPaced(port, fabric.Spike(3))
			close(done)
		}()

		Consistently(done, "20ms").ShouldNot(BeClosed())

		clock.SetCount(900)
		Eventually(done).Should(BeClosed())
	})

	It("should retry until the fabric accepts", func() {
		full := fabric.NewBufferedPort("Instance0.FullPort", 1)
		full.Send(fabric.Spike(0))

		clock.SetCount(1000)
		pacer.StartTick()
		clock.SetCount(0)

		done := make(chan struct{})
		go func() {
			pacer.SendPaced(full, fabric.Spike(9))
			close(done)
		}()

		Consistently(done, "20ms").ShouldNot(BeClosed())

		full.Retrieve()
		Eventually(done).Should(BeClosed())
	})
})
