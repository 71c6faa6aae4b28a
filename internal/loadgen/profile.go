package loadgen

import (
	"time"
)

type Kind string

const (
	KindRamp     Kind = "ramp"
	KindSpike    Kind = "spike"
	KindConstant Kind = "constant"
	KindBurst    Kind = "burst"
)

// Profile describes the shape of one load phase. It is a value object
// constructed once per scenario and never mutated afterwards.
type Profile struct {
	Kind Kind `json:"kind"`

	// Ramp
	StartRPS float64 `json:"start_rps,omitempty"`
	EndRPS   float64 `json:"end_rps,omitempty"`

	// Spike
	BaseRPS       float64       `json:"base_rps,omitempty"`
	SpikeRPS      float64       `json:"spike_rps,omitempty"`
	SpikeDuration time.Duration `json:"spike_duration,omitempty"`

	// Constant
	RPS float64 `json:"rps,omitempty"`

	Duration time.Duration `json:"duration,omitempty"`

	// Burst (fixed fan-out, not rate paced)
	RequestCount int           `json:"request_count,omitempty"`
	Concurrency  int           `json:"concurrency,omitempty"`
	Stagger      time.Duration `json:"stagger,omitempty"`
}

// Ramp interpolates linearly from start to end RPS over the duration.
// A decreasing ramp (end < start) is valid.
func Ramp(startRPS, endRPS float64, duration time.Duration) Profile {
	return Profile{
		Kind:     KindRamp,
		StartRPS: startRPS,
		EndRPS:   endRPS,
		Duration: duration,
	}
}

// Spike holds base RPS with a single elevated window in the middle of the
// run. The window is an explicit on/off schedule, it does not repeat.
func Spike(baseRPS, spikeRPS float64, spikeDuration, duration time.Duration) Profile {
	return Profile{
		Kind:          KindSpike,
		BaseRPS:       baseRPS,
		SpikeRPS:      spikeRPS,
		SpikeDuration: spikeDuration,
		Duration:      duration,
	}
}

// Constant holds a flat RPS for the duration.
func Constant(rps float64, duration time.Duration) Profile {
	return Profile{
		Kind:     KindConstant,
		RPS:      rps,
		Duration: duration,
	}
}

// Burst launches a fixed number of requests with a fixed inter-launch
// stagger, bounded by concurrency in flight.
func Burst(requestCount, concurrency int, stagger time.Duration) Profile {
	return Profile{
		Kind:         KindBurst,
		RequestCount: requestCount,
		Concurrency:  concurrency,
		Stagger:      stagger,
	}
}

// TargetRPS returns the target issuance rate at the given elapsed offset.
// Outside [0, Duration] the target is 0. Burst profiles are not rate
// paced and always return 0.
func (p Profile) TargetRPS(elapsed time.Duration) float64 {
	if elapsed < 0 || elapsed >= p.Duration {
		return 0
	}

	switch p.Kind {
	case KindRamp:
		if p.Duration <= 0 {
			return 0
		}
		frac := float64(elapsed) / float64(p.Duration)
		return p.StartRPS + (p.EndRPS-p.StartRPS)*frac
	case KindSpike:
		start, end := p.spikeWindow()
		if elapsed >= start && elapsed < end {
			return p.SpikeRPS
		}
		return p.BaseRPS
	case KindConstant:
		return p.RPS
	}
	return 0
}

// spikeWindow centers the single spike inside the run. A spike longer
// than the run covers the whole run.
func (p Profile) spikeWindow() (start, end time.Duration) {
	if p.SpikeDuration >= p.Duration {
		return 0, p.Duration
	}
	start = (p.Duration - p.SpikeDuration) / 2
	return start, start + p.SpikeDuration
}

// TotalDuration is the wall-clock length of the load phase. For bursts
// it is the launch schedule length; settle time comes on top.
func (p Profile) TotalDuration() time.Duration {
	if p.Kind == KindBurst {
		return time.Duration(p.RequestCount) * p.Stagger
	}
	return p.Duration
}
