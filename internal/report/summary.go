package report

import (
	"scaledemo/internal/loadgen"
	"scaledemo/internal/stats"
)

// SummaryStats is a derived reduction of one scenario's results. It is
// recomputable at any time and never authoritative on its own.
type SummaryStats struct {
	Count        int     `json:"count"`
	ErrorCount   int     `json:"error_count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P50LatencyMs float64 `json:"p50_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
	P99LatencyMs float64 `json:"p99_latency_ms"`
}

// Summarize reduces results into summary statistics. Errored results
// (network failure or status >= 400) are counted but excluded from the
// latency distribution. Pure: identical input yields identical output.
func Summarize(results []loadgen.Result) SummaryStats {
	s := SummaryStats{Count: len(results)}

	h := stats.NewSafeHistogram()
	for _, r := range results {
		if !r.Success() {
			s.ErrorCount++
			continue
		}
		h.RecordDuration(r.Latency)
	}

	if h.TotalCount() == 0 {
		return s
	}

	s.AvgLatencyMs = h.Mean() / 1000.0
	s.P50LatencyMs = float64(h.ValueAtQuantile(50)) / 1000.0
	s.P95LatencyMs = float64(h.ValueAtQuantile(95)) / 1000.0
	s.P99LatencyMs = float64(h.ValueAtQuantile(99)) / 1000.0
	return s
}
