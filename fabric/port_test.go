package fabric_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/spikesim/fabric"
)

var _ = Describe("BufferedPort", func() {
	var port *fabric.BufferedPort

	BeforeEach(func() {
		port = fabric.NewBufferedPort("Instance0.SpikePort", 2)
	})

	It("should accept spikes up to capacity", func() {
		Expect(port.Send(fabric.Spike(0x1000))).To(BeNil())
		Expect(port.Send(fabric.Spike(0x1001))).To(BeNil())
		Expect(port.Pending()).To(Equal(2))
	})

	It("should refuse spikes when full", func() {
		Expect(port.Send(fabric.Spike(1))).To(BeNil())
		Expect(port.Send(fabric.Spike(2))).To(BeNil())
		Expect(port.Send(fabric.Spike(3))).NotTo(BeNil())
	})

	It("should retrieve spikes in order", func() {
		port.Send(fabric.Spike(1))
		port.Send(fabric.Spike(2))

		s, ok := port.Retrieve()
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(fabric.Spike(1)))

		s, ok = port.Retrieve()
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(fabric.Spike(2)))

		_, ok = port.Retrieve()
		Expect(ok).To(BeFalse())
	})
})
