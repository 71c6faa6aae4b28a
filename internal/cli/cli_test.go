package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scaledemo/internal/report"
	"scaledemo/internal/stats"
	"scaledemo/internal/storage"
)

func TestProgressLineShowsLiveFigures(t *testing.T) {
	live := stats.NewLive()
	for i := 0; i < 9; i++ {
		live.AddResult(true, 10_000) // 10ms
	}
	live.AddResult(false, 10_000)

	var out bytes.Buffer
	p := NewProgress(live, time.Second, &out)
	p.Start()
	time.Sleep(350 * time.Millisecond)
	p.Stop()

	s := out.String()
	assert.Contains(t, s, "P50/P99")
	assert.Contains(t, s, "OK: 9")
	assert.Contains(t, s, "Err: 1")
	assert.Contains(t, s, "(10.0%)", "error rate for 1 failure out of 10")
}

func TestPrintHistoryRendersRuns(t *testing.T) {
	var out bytes.Buffer
	PrintHistory(&out, []storage.HistoryItem{
		{
			ID:        "0d9aa2a2-57b1-4af3-9c10-02f7fe1c88d4",
			Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Scenario:  "scenario2",
			Summary:   report.SummaryStats{Count: 4800, ErrorCount: 12, AvgLatencyMs: 18.4, P99LatencyMs: 92.1},
		},
	})

	s := out.String()
	assert.Contains(t, s, "scenario2")
	assert.Contains(t, s, "0d9aa2a2", "run IDs are shortened for the table")
	assert.NotContains(t, s, "0d9aa2a2-57b1")
	assert.Contains(t, s, "4800")
	assert.Contains(t, s, "2026-08-01 12:00:00")
}

func TestPrintHistoryEmpty(t *testing.T) {
	var out bytes.Buffer
	PrintHistory(&out, nil)
	assert.Contains(t, out.String(), "No demo runs recorded yet")
}
