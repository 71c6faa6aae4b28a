package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"scaledemo/internal/report"
	"scaledemo/internal/stats"
	"scaledemo/internal/storage"
)

// Progress periodically rewrites one status line for a running load
// phase. Start launches the printer; Stop joins it and terminates the
// line.
type Progress struct {
	live  *stats.Live
	total time.Duration
	out   io.Writer

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewProgress(live *stats.Live, total time.Duration, out io.Writer) *Progress {
	return &Progress{
		live:   live,
		total:  total,
		out:    out,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (p *Progress) Start() {
	go p.loop()
}

func (p *Progress) loop() {
	defer close(p.doneCh)

	start := time.Now()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			elapsed := time.Since(start)

			pct := 1.0
			if p.total > 0 {
				pct = elapsed.Seconds() / p.total.Seconds()
				if pct > 1.0 {
					pct = 1.0
				}
			}

			rps := 0.0
			if elapsed.Seconds() > 0 {
				rps = float64(p.live.GetRequests()) / elapsed.Seconds()
			}

			fmt.Fprintf(p.out, "\r%s %3.0f%% | %s/%s | Inf: %3d | RPS: %.1f | P50/P99: %.0f/%.0fms | OK: %d | Err: %d (%.1f%%)",
				progressBar(pct, 20), pct*100,
				elapsed.Round(time.Second), p.total,
				p.live.GetInflight(),
				rps,
				p.live.P50Ms(), p.live.P99Ms(),
				p.live.GetSuccess(),
				p.live.GetFail(), p.live.ErrorRate(),
			)
		}
	}
}

func (p *Progress) Stop() {
	close(p.stopCh)
	<-p.doneCh
	fmt.Fprintln(p.out)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

// PrintHistory renders past demo runs, newest first.
func PrintHistory(out io.Writer, items []storage.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No demo runs recorded yet.")
		return
	}

	fmt.Fprintf(out, "\nDEMO RUN HISTORY\n")
	fmt.Fprintf(out, "%-10s %-20s %-12s %8s %8s %10s %10s\n",
		"Run", "Timestamp", "Scenario", "Count", "Errors", "Avg(ms)", "P99(ms)")
	fmt.Fprintln(out, strings.Repeat("-", 84))

	for _, item := range items {
		id := item.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(out, "%-10s %-20s %-12s %8d %8d %10.1f %10.1f\n",
			id,
			item.Timestamp.Format("2006-01-02 15:04:05"),
			item.Scenario,
			item.Summary.Count,
			item.Summary.ErrorCount,
			item.Summary.AvgLatencyMs,
			item.Summary.P99LatencyMs,
		)
	}
}

// PrintSummary renders one scenario's summary statistics.
func PrintSummary(out io.Writer, name string, s report.SummaryStats, elapsed time.Duration) {
	rps := 0.0
	if elapsed.Seconds() > 0 {
		rps = float64(s.Count) / elapsed.Seconds()
	}

	fmt.Fprintf(out, "\nLOAD PHASE RESULTS (%s)\n", name)
	fmt.Fprintln(out, strings.Repeat("=", 70))
	fmt.Fprintf(out, "Total Duration : %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(out, "Requests Sent  : %d\n", s.Count)
	fmt.Fprintf(out, "Errors         : %d\n", s.ErrorCount)
	fmt.Fprintf(out, "Actual RPS     : %.2f\n", rps)
	fmt.Fprintf(out, "\nRESPONSE TIMES (ms) [Success Only]\n")
	fmt.Fprintf(out, "   Avg : %.2f\n", s.AvgLatencyMs)
	fmt.Fprintf(out, "   P50 : %.2f\n", s.P50LatencyMs)
	fmt.Fprintf(out, "   P95 : %.2f\n", s.P95LatencyMs)
	fmt.Fprintf(out, "   P99 : %.2f\n", s.P99LatencyMs)
	fmt.Fprintln(out, strings.Repeat("=", 70))
}
