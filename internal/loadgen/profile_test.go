package loadgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRampTargetRPS(t *testing.T) {
	p := Ramp(5, 100, 10*time.Minute)

	assert.InDelta(t, 5, p.TargetRPS(0), 0.01)
	assert.InDelta(t, 52.5, p.TargetRPS(5*time.Minute), 0.01)
	assert.InDelta(t, 100, p.TargetRPS(10*time.Minute-time.Millisecond), 0.2)

	// Outside the run the target is 0.
	assert.Zero(t, p.TargetRPS(10*time.Minute))
	assert.Zero(t, p.TargetRPS(-time.Second))
}

func TestRampIsMonotonic(t *testing.T) {
	p := Ramp(5, 100, 10*time.Minute)

	prev := p.TargetRPS(0)
	for elapsed := 10 * time.Second; elapsed < 10*time.Minute; elapsed += 10 * time.Second {
		cur := p.TargetRPS(elapsed)
		assert.GreaterOrEqual(t, cur, prev, "ramp must be non-decreasing at %s", elapsed)
		prev = cur
	}
}

func TestDecreasingRampIsValid(t *testing.T) {
	p := Ramp(100, 5, time.Minute)

	assert.InDelta(t, 100, p.TargetRPS(0), 0.01)
	assert.Greater(t, p.TargetRPS(10*time.Second), p.TargetRPS(50*time.Second))
}

func TestSpikeSingleWindow(t *testing.T) {
	p := Spike(10, 150, time.Minute, 8*time.Minute)

	// Window is centered: [3m30s, 4m30s).
	assert.InDelta(t, 10, p.TargetRPS(time.Minute), 0.01)
	assert.InDelta(t, 150, p.TargetRPS(4*time.Minute), 0.01)
	assert.InDelta(t, 10, p.TargetRPS(5*time.Minute), 0.01)

	// Spike rate exceeds base by at least 5x.
	assert.GreaterOrEqual(t, p.TargetRPS(4*time.Minute), 5*p.TargetRPS(time.Minute))
}

func TestSpikeLongerThanRunCoversWholeRun(t *testing.T) {
	p := Spike(10, 150, 10*time.Minute, time.Minute)

	assert.InDelta(t, 150, p.TargetRPS(0), 0.01)
	assert.InDelta(t, 150, p.TargetRPS(30*time.Second), 0.01)
}

func TestConstantTargetRPS(t *testing.T) {
	p := Constant(80, 5*time.Minute)

	for _, elapsed := range []time.Duration{0, time.Minute, 4 * time.Minute} {
		assert.InDelta(t, 80, p.TargetRPS(elapsed), 0.01)
	}
}

func TestBurstTotalDuration(t *testing.T) {
	p := Burst(50, 50, 100*time.Millisecond)

	assert.Equal(t, 5*time.Second, p.TotalDuration())
	assert.Zero(t, p.TargetRPS(time.Second), "bursts are not rate paced")
}
