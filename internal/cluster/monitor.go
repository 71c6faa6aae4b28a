package cluster

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const DefaultPollInterval = 10 * time.Second

// MonitorConfig bounds one monitoring run.
type MonitorConfig struct {
	Interval    time.Duration // poll cadence, default 10s
	MaxDuration time.Duration // hard lifetime bound
	Out         io.Writer     // status lines, default stdout
}

// Monitor polls a StatusProvider on a fixed cadence for a bounded
// duration, recording samples and printing a live status line. It is
// idle until Start, running until MaxDuration elapses or Stop is
// called, and stopped afterwards.
//
// The sample slice is written only by the polling goroutine; callers
// must read it through Samples after the monitor has stopped.
type Monitor struct {
	provider StatusProvider
	cfg      MonitorConfig

	mu      sync.Mutex
	started bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	samples []Sample
}

func NewMonitor(provider StatusProvider, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Monitor{
		provider: provider,
		cfg:      cfg,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background polling loop. Starting twice is a
// programmer error.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("monitor already started")
	}
	m.started = true

	go m.loop(ctx)
	return nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.doneCh)

	fmt.Fprintf(m.cfg.Out, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintln(m.cfg.Out, "AUTOSCALING MONITOR")
	fmt.Fprintln(m.cfg.Out, strings.Repeat("=", 60))
	fmt.Fprintf(m.cfg.Out, "%-10s %-6s %-6s %-8s %s\n", "Time", "Pods", "CPU%", "Desired", "Status")
	fmt.Fprintln(m.cfg.Out, strings.Repeat("-", 60))

	deadline := time.NewTimer(m.cfg.MaxDuration)
	defer deadline.Stop()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	// First poll immediately, then on the cadence. Cancellation is
	// cooperative: checked at each poll boundary, never mid-query.
	m.poll(ctx)
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	s := m.provider.Query(ctx)
	m.samples = append(m.samples, s)

	fmt.Fprintf(m.cfg.Out, "%-10s %-6d %-6d %-8d %s\n",
		s.SampledAt.Format("15:04:05"),
		s.RunningPods,
		s.CPUUtilizationPct,
		s.DesiredReplicas,
		s.StatusLabel(),
	)
}

// Stop signals the polling loop and waits for it to cease. It is
// idempotent and safe to call after the monitor self-terminated; no
// sample is produced after Stop returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return
	}

	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.doneCh
}

// Wait blocks until the polling loop has terminated on its own
// (max duration, context cancellation, or Stop from elsewhere).
func (m *Monitor) Wait() {
	<-m.doneCh
}

// Samples returns the recorded samples. Only valid after Stop (or
// self-termination via Stop) has returned.
func (m *Monitor) Samples() []Sample {
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}
