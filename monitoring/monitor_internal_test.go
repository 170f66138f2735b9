package monitoring

import (
	"math"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/gorilla/mux"

	"github.com/sarchlab/spikesim/fixedpoint"
	"github.com/sarchlab/spikesim/rng"
	"github.com/sarchlab/spikesim/spikesource"
)

func sampleRunner(name string) *spikesource.Runner {
	comp := spikesource.MakeBuilder().
		WithParams(
			spikesource.Params{
				SecondsPerTick: fixedpoint.ULongFractFromFloat64(0.001),
				TicksPerSecond: fixedpoint.RealFromFloat64(1000),
				SlowRateCutoff: fixedpoint.RealFromFloat64(10),
				FirstSourceID:  100,
				NSources:       1,
				Seed:           rng.Seed{1, 2, 3, 4},
			},
			[]spikesource.Source{
				{
					StartTick:    0,
					EndTick:      math.MaxUint32,
					MeanISITicks: fixedpoint.RealFromFloat64(50),
				},
			}).
		Build(name)

	return spikesource.NewRunner(comp, time.Millisecond)
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should register runners", func() {
		m.RegisterRunner(sampleRunner("Instance0"))

		Expect(m.runners).To(HaveLen(1))
	})

	It("should list component names", func() {
		m.RegisterRunner(sampleRunner("Instance0"))
		m.RegisterRunner(sampleRunner("Instance1"))

		w := httptest.NewRecorder()
		m.listComponents(w, httptest.NewRequest("GET", "/", nil))

		Expect(w.Body.String()).To(Equal(`["Instance0","Instance1"]`))
	})

	It("should report the current tick", func() {
		m.RegisterRunner(sampleRunner("Instance0"))

		w := httptest.NewRecorder()
		m.now(w, httptest.NewRequest("GET", "/", nil))

		Expect(w.Body.String()).To(MatchRegexp(`\{"now":\d+\}`))
	})

	It("should apply a rate update by global id", func() {
		runner := sampleRunner("Instance0")
		m.RegisterRunner(runner)

		req := httptest.NewRequest(
			"POST", "/api/rate/Instance0?id=100&rate=50", nil)
		req = mux.SetURLVars(req, map[string]string{"name": "Instance0"})

		w := httptest.NewRecorder()
		m.setRate(w, req)

		Expect(w.Code).To(Equal(200))
		Expect(runner.Comp().Bank().Source(0).IsFast).To(BeTrue())
	})

	It("should return 404 for an unknown component", func() {
		req := httptest.NewRequest("POST", "/api/rate/Nope?id=0&rate=1", nil)
		req = mux.SetURLVars(req, map[string]string{"name": "Nope"})

		w := httptest.NewRecorder()
		m.setRate(w, req)

		Expect(w.Code).To(Equal(404))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("ticks", 100)
		bar.IncrementFinished(10)

		w := httptest.NewRecorder()
		m.listProgressBars(w, httptest.NewRequest("GET", "/", nil))
		Expect(w.Body.String()).To(ContainSubstring(`"finished":10`))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
