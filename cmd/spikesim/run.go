package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/spikesim/fabric"
	"github.com/sarchlab/spikesim/monitoring"
	"github.com/sarchlab/spikesim/recording"
	"github.com/sarchlab/spikesim/spikesource"
)

var runFlags = struct {
	scenarioPath string
	logSpikes    bool
	openBrowser  bool
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the instances described by a scenario file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.scenarioPath,
		"scenario", "s", "scenario.yaml", "the scenario file to run")
	runCmd.Flags().BoolVar(&runFlags.logSpikes,
		"log-spikes", false, "log every transmitted spike to stderr")
	runCmd.Flags().BoolVar(&runFlags.openBrowser,
		"open-browser", false, "open the monitoring page in the browser")

	rootCmd.AddCommand(runCmd)
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	if path := os.Getenv("SPIKESIM_SCENARIO"); path != "" {
		runFlags.scenarioPath = path
	}

	scenario, err := LoadScenario(runFlags.scenarioPath)
	if err != nil {
		return err
	}

	var collector recording.Collector
	if scenario.Recording != "" {
		collector = recording.NewSQLiteCollector(scenario.Recording)
	}

	runners := make([]*spikesource.Runner, 0, len(scenario.Instances))
	for _, inst := range scenario.Instances {
		comp := buildInstance(scenario, inst, collector)
		runners = append(runners, spikesource.NewRunner(
			comp, time.Duration(scenario.TickPeriod)))
	}

	if scenario.RateUpdatePort != 0 {
		handlers := make([]*spikesource.RateUpdateHandler, len(runners))
		for i, r := range runners {
			handlers[i] = spikesource.NewRateUpdateHandler(r.Comp().Bank())
		}

		go listenRateUpdates(scenario.RateUpdatePort, handlers)
	}

	if scenario.MonitorPort != 0 {
		monitor := monitoring.NewMonitor().
			WithPortNumber(scenario.MonitorPort)
		if runFlags.openBrowser {
			monitor.WithBrowserLaunch()
		}

		for _, r := range runners {
			monitor.RegisterRunner(r)
		}

		monitor.StartServer()
	}

	var wg sync.WaitGroup
	for _, r := range runners {
		wg.Add(1)
		go func(r *spikesource.Runner) {
			defer wg.Done()
			r.Run()
		}(r)
	}
	wg.Wait()

	return nil
}

func buildInstance(
	scenario *Scenario,
	inst InstanceConfig,
	collector recording.Collector,
) *spikesource.Comp {
	builder := spikesource.MakeBuilder().
		WithParams(scenario.buildParams(inst), scenario.buildSources(inst))

	if inst.Key != nil {
		period := time.Duration(scenario.TickPeriod)
		port := fabric.NewBufferedPort(inst.Name+".SpikePort", 1024)
		go drainPort(port, period)

		builder = builder.
			WithFabricPort(port).
			WithClock(fabric.NewTimerClock(period))
	}

	if collector != nil {
		builder = builder.WithCollector(collector)
	}

	if scenario.RunTicks != 0 {
		builder = builder.WithRunLength(scenario.RunTicks)
	}

	if scenario.StateDir != "" {
		builder = builder.WithStore(spikesource.FileStore{
			Path: filepath.Join(scenario.StateDir, inst.Name+".bank"),
		})
	}

	comp := builder.Build(inst.Name)

	if runFlags.logSpikes {
		comp.AcceptHook(spikesource.NewSpikeLogger(
			log.New(os.Stderr, "", 0)))
	}

	return comp
}

// drainPort empties the fabric port so that a run without a downstream
// consumer does not stall on a full buffer.
func drainPort(port *fabric.BufferedPort, period time.Duration) {
	for {
		if _, ok := port.Retrieve(); !ok {
			time.Sleep(period / 10)
		}
	}
}

// listenRateUpdates feeds UDP datagrams carrying batch rate updates to every
// instance. Each instance keeps the items addressed to its own range.
func listenRateUpdates(
	port int,
	handlers []*spikesource.RateUpdateHandler,
) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		log.Panicf("failed to listen for rate updates: %v", err)
	}

	fmt.Fprintf(os.Stderr,
		"Accepting rate updates on udp port %d\n", port)

	buf := make([]byte, 65536)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Printf("rate update read failed: %v", err)
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		for _, h := range handlers {
			if err := h.ApplyBatch(payload); err != nil {
				log.Printf("rate update dropped: %v", err)
				break
			}
		}
	}
}
