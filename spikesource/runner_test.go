package spikesource

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Runner", func() {
	It("should drive the instance to its run length", func() {
		comp := MakeBuilder().
			WithParams(testParams(1), []Source{alwaysActiveFast(1.0)}).
			WithRunLength(3).
			Build("Instance0")
		runner := NewRunner(comp, 50*time.Microsecond)

		executed := runner.Run()

		Expect(executed).To(Equal(uint32(3)))
		Expect(comp.State()).To(Equal(StatePaused))
	})

	It("should hold virtual time still while paused", func() {
		comp := MakeBuilder().
			WithParams(testParams(1), []Source{alwaysActiveFast(1.0)}).
			WithRunLength(100000).
			Build("Instance0")
		runner := NewRunner(comp, 50*time.Microsecond)

		done := make(chan struct{})
		go func() {
			runner.Run()
			close(done)
		}()

		Eventually(func() uint32 {
			return runner.CurrentTick()
		}).Should(BeNumerically(">", 0))

		runner.Pause()
		frozen := runner.CurrentTick()
		Consistently(func() uint32 {
			return runner.CurrentTick()
		}).Should(Equal(frozen))

		runner.Continue()
		Eventually(func() uint32 {
			return runner.CurrentTick()
		}).Should(BeNumerically(">", frozen))

		runner.Pause()
		comp.runLength = runner.CurrentTick() + 2
		runner.Continue()
		Eventually(done, time.Second).Should(BeClosed())
	})
})
