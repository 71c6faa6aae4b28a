package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"scaledemo/internal/cluster"
	"scaledemo/internal/loadgen"
)

// Artifact is the persisted record of one scenario run: the summary
// plus every raw result and scaling sample.
type Artifact struct {
	Scenario string           `json:"scenario"`
	Profile  loadgen.Profile  `json:"profile"`
	Stats    SummaryStats     `json:"stats"`
	Results  []loadgen.Result `json:"results"`
	Samples  []cluster.Sample `json:"samples"`
}

// ArtifactPath is where a scenario's results land inside outDir.
func ArtifactPath(outDir, scenario string) string {
	return filepath.Join(outDir, scenario+"_results.json")
}

func WriteArtifact(outDir string, a Artifact) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", err
	}

	path := ArtifactPath(outDir, a.Scenario)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func ReadArtifact(path string) (Artifact, error) {
	var a Artifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parse %s: %w", path, err)
	}
	return a, nil
}

// DemoReport is the merged record across all scenario artifacts.
type DemoReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Scenarios   []ScenarioEntry `json:"scenarios"`
}

type ScenarioEntry struct {
	Name    string       `json:"name"`
	Stats   SummaryStats `json:"stats"`
	Samples int          `json:"samples"`
	MaxPods int          `json:"max_pods"`
}

// BuildDemoReport reads each scenario artifact under outDir, prints a
// comparative table, and writes the merged report JSON. Missing
// artifacts are skipped, matching partial demo runs.
func BuildDemoReport(outDir string, scenarios []string, w io.Writer) (string, error) {
	rep := DemoReport{GeneratedAt: time.Now()}

	fmt.Fprintf(w, "\nDEMO REPORT\n")
	fmt.Fprintf(w, "%-12s %8s %8s %10s %10s %8s\n",
		"Scenario", "Count", "Errors", "Avg(ms)", "P95(ms)", "MaxPods")

	for _, name := range scenarios {
		a, err := ReadArtifact(ArtifactPath(outDir, name))
		if err != nil {
			fmt.Fprintf(w, "%-12s (no results: %v)\n", name, err)
			continue
		}

		maxPods := 0
		for _, s := range a.Samples {
			if s.RunningPods > maxPods {
				maxPods = s.RunningPods
			}
		}

		rep.Scenarios = append(rep.Scenarios, ScenarioEntry{
			Name:    name,
			Stats:   a.Stats,
			Samples: len(a.Samples),
			MaxPods: maxPods,
		})

		fmt.Fprintf(w, "%-12s %8d %8d %10.1f %10.1f %8d\n",
			name, a.Stats.Count, a.Stats.ErrorCount,
			a.Stats.AvgLatencyMs, a.Stats.P95LatencyMs, maxPods)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, "autoscaling_demo_report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
