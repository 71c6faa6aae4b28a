package scenario

import (
	"time"

	"scaledemo/internal/cluster"
	"scaledemo/internal/loadgen"
)

// Scenario is one named demo: a load profile plus the monitoring window
// that must cover it.
type Scenario struct {
	Name        string
	Title       string
	Expectation string

	Profile loadgen.Profile
	Request loadgen.Request

	// MonitorDuration bounds the monitor's lifetime. The orchestrator
	// raises it to the profile duration if set lower.
	MonitorDuration time.Duration
	Concurrency     int
}

// Run is the record of one executed scenario. It is owned by the
// orchestrator while running and read-only afterwards.
type Run struct {
	ID       string           `json:"id"`
	Scenario string           `json:"scenario"`
	Profile  loadgen.Profile  `json:"profile"`
	Results  []loadgen.Result `json:"results"`
	Samples  []cluster.Sample `json:"samples"`
}

// Builtin returns the four demo scenarios in execution order.
func Builtin() []Scenario {
	listTasks := loadgen.Request{Method: "GET", Path: "/api/tasks"}

	return []Scenario{
		{
			Name:            "scenario1",
			Title:           "Gradual Load Increase (Scale-Out Demo)",
			Expectation:     "Pods should scale from 2 to ~8 over 10 minutes",
			Profile:         loadgen.Ramp(5, 100, 10*time.Minute),
			Request:         listTasks,
			MonitorDuration: 10 * time.Minute,
			Concurrency:     200,
		},
		{
			Name:            "scenario2",
			Title:           "Load Spike (Rapid Scaling Demo)",
			Expectation:     "Quick scale-out during the spike, scale-in afterwards",
			Profile:         loadgen.Spike(10, 150, time.Minute, 8*time.Minute),
			Request:         listTasks,
			MonitorDuration: 8 * time.Minute,
			Concurrency:     300,
		},
		{
			Name:            "scenario3",
			Title:           "Sustained High Load (Stability Demo)",
			Expectation:     "Stable scaling that holds the consistent load",
			Profile:         loadgen.Constant(80, 5*time.Minute),
			Request:         listTasks,
			MonitorDuration: 5 * time.Minute,
			Concurrency:     200,
		},
		{
			Name:        "scenario4",
			Title:       "CPU-Intensive Load (CPU-Based Scaling)",
			Expectation: "Scaling driven by CPU utilization metrics",
			Profile:     loadgen.Burst(50, 50, 100*time.Millisecond),
			Request: loadgen.Request{
				Method: "POST",
				Path:   "/api/cpu-intensive",
				Body:   []byte(`{"iterations": 500000}`),
			},
			MonitorDuration: 3 * time.Minute,
			Concurrency:     50,
		},
	}
}

// ByName looks up a builtin scenario.
func ByName(name string) (Scenario, bool) {
	for _, sc := range Builtin() {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Names lists the builtin scenario names in order.
func Names() []string {
	builtin := Builtin()
	names := make([]string, len(builtin))
	for i, sc := range builtin {
		names[i] = sc.Name
	}
	return names
}
