package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/spikesim/fixedpoint"
	"github.com/sarchlab/spikesim/rng"
	"github.com/sarchlab/spikesim/spikesource"
)

// Duration decodes YAML scalars like "1ms" through time.ParseDuration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)

	return nil
}

// Scenario describes a complete run: the tick cadence, the instances to
// build, and where spikes and state go.
type Scenario struct {
	// TickPeriod is the wall-clock duration of one tick.
	TickPeriod Duration `yaml:"tick_period"`

	// RunTicks is the run length. Zero means run forever.
	RunTicks uint32 `yaml:"run_ticks"`

	// Recording is the SQLite file spikes are recorded into. Empty disables
	// recording.
	Recording string `yaml:"recording"`

	// StateDir is where instance state is stored at pause boundaries.
	StateDir string `yaml:"state_dir"`

	// MonitorPort serves the monitoring API. Zero disables the server.
	MonitorPort int `yaml:"monitor_port"`

	// RateUpdatePort accepts batch rate updates over UDP. Zero disables the
	// listener.
	RateUpdatePort int `yaml:"rate_update_port"`

	Instances []InstanceConfig `yaml:"instances"`
}

// InstanceConfig describes one spike source instance.
type InstanceConfig struct {
	Name string `yaml:"name"`

	// Key is the base transmission key. Nil disables transmission.
	Key *uint32 `yaml:"key,omitempty"`

	RateUpdateIDMask  uint32 `yaml:"rate_update_id_mask"`
	RandomBackoffUs   uint32 `yaml:"random_backoff_us"`
	TimeBetweenSpikes uint32 `yaml:"time_between_spikes"`

	// SecondsPerTick defaults to the scenario tick period.
	SecondsPerTick float64 `yaml:"seconds_per_tick,omitempty"`

	// SlowRateCutoff is the rate, in Hz, at and below which sources use the
	// inter-spike-interval path.
	SlowRateCutoff float64 `yaml:"slow_rate_cutoff"`

	FirstSourceID uint32    `yaml:"first_source_id"`
	Seed          [4]uint32 `yaml:"seed"`

	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one source of an instance.
type SourceConfig struct {
	// Rate is the firing rate in Hz.
	Rate float64 `yaml:"rate"`

	StartTick uint32 `yaml:"start_tick"`

	// EndTick of zero means active forever.
	EndTick uint32 `yaml:"end_tick,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if s.TickPeriod <= 0 {
		return nil, fmt.Errorf("scenario needs a positive tick_period")
	}

	if len(s.Instances) == 0 {
		return nil, fmt.Errorf("scenario declares no instances")
	}

	for i, inst := range s.Instances {
		if inst.Name == "" {
			return nil, fmt.Errorf("instance %d has no name", i)
		}

		if len(inst.Sources) == 0 {
			return nil, fmt.Errorf(
				"instance %s declares no sources", inst.Name)
		}
	}

	return s, nil
}

// buildParams converts an instance configuration into the parameter block.
func (s *Scenario) buildParams(inst InstanceConfig) spikesource.Params {
	secondsPerTick := inst.SecondsPerTick
	if secondsPerTick == 0 {
		secondsPerTick = time.Duration(s.TickPeriod).Seconds()
	}

	p := spikesource.Params{
		RateUpdateIDMask:  inst.RateUpdateIDMask,
		RandomBackoffUs:   inst.RandomBackoffUs,
		TimeBetweenSpikes: inst.TimeBetweenSpikes,
		SecondsPerTick:    fixedpoint.ULongFractFromFloat64(secondsPerTick),
		TicksPerSecond:    fixedpoint.RealFromFloat64(1 / secondsPerTick),
		SlowRateCutoff:    fixedpoint.RealFromFloat64(inst.SlowRateCutoff),
		FirstSourceID:     inst.FirstSourceID,
		NSources:          uint32(len(inst.Sources)),
		Seed:              rng.Seed(inst.Seed),
	}

	if inst.Key != nil {
		p.HasKey = true
		p.Key = *inst.Key
	}

	return p
}

// buildSources classifies the configured rates into fast and slow records.
func (s *Scenario) buildSources(inst InstanceConfig) []spikesource.Source {
	params := s.buildParams(inst)

	sources := make([]spikesource.Source, len(inst.Sources))
	for i, sc := range inst.Sources {
		endTick := sc.EndTick
		if endTick == 0 {
			endTick = ^uint32(0)
		}

		src := spikesource.Source{
			StartTick: sc.StartTick,
			EndTick:   endTick,
		}

		rate := fixedpoint.RealFromFloat64(sc.Rate)
		if rate > params.SlowRateCutoff {
			src.IsFast = true
			src.ExpMinusLambda = fixedpoint.ExpNegULF(
				rate.MulULF(params.SecondsPerTick))
		} else {
			src.MeanISITicks = rate.Mul(params.TicksPerSecond)
		}

		sources[i] = src
	}

	return sources
}
