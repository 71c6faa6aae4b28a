package scenario

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scaledemo/internal/cli"
	"scaledemo/internal/cluster"
	"scaledemo/internal/loadgen"
	"scaledemo/internal/report"
	"scaledemo/internal/storage"
)

const defaultCooldown = 30 * time.Second

// Config wires one demo run.
type Config struct {
	BaseURL        string
	Provider       cluster.StatusProvider
	OutDir         string
	RequestTimeout time.Duration // per issued request
	PollInterval   time.Duration // monitor cadence
	Cooldown       time.Duration // between scenarios in RunAll
	Out            io.Writer
	History        *storage.Store // optional
	Log            *zap.Logger
}

// Orchestrator sequences scenarios: monitor in the background, load
// phase in the foreground, deterministic monitor shutdown, then
// aggregation and artifact persistence.
type Orchestrator struct {
	cfg Config
}

func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("target base URL is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("status provider is required")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Orchestrator{cfg: cfg}, nil
}

// RunScenario executes one scenario end to end. Request failures show
// up as elevated error counts in the summary; only configuration
// errors abort.
func (o *Orchestrator) RunScenario(ctx context.Context, sc Scenario) (*Run, error) {
	issuer, err := loadgen.NewIssuer(o.cfg.BaseURL, o.cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}

	out := o.cfg.Out
	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(out, "%s: %s\n", strings.ToUpper(sc.Name), sc.Title)
	fmt.Fprintf(out, "Expected behavior: %s\n", sc.Expectation)
	fmt.Fprintln(out, strings.Repeat("=", 70))

	// The monitor's lifetime always covers the load phase.
	monitorDur := sc.MonitorDuration
	if d := sc.Profile.TotalDuration(); monitorDur < d {
		monitorDur = d
	}
	monitor := cluster.NewMonitor(o.cfg.Provider, cluster.MonitorConfig{
		Interval:    o.cfg.PollInterval,
		MaxDuration: monitorDur,
		Out:         out,
	})
	if err := monitor.Start(ctx); err != nil {
		return nil, err
	}

	sched := loadgen.NewScheduler(loadgen.Config{
		Concurrency: sc.Concurrency,
		Request:     sc.Request,
	}, issuer)

	progress := cli.NewProgress(sched.Live(), sc.Profile.TotalDuration(), out)
	progress.Start()

	start := time.Now()
	results := sched.Run(ctx, sc.Profile)
	elapsed := time.Since(start)

	progress.Stop()

	// Join the monitor before touching its samples.
	monitor.Stop()

	run := &Run{
		ID:       uuid.NewString(),
		Scenario: sc.Name,
		Profile:  sc.Profile,
		Results:  results,
		Samples:  monitor.Samples(),
	}

	summary := report.Summarize(run.Results)
	cli.PrintSummary(out, sc.Name, summary, elapsed)

	path, err := report.WriteArtifact(o.cfg.OutDir, report.Artifact{
		Scenario: run.Scenario,
		Profile:  run.Profile,
		Stats:    summary,
		Results:  run.Results,
		Samples:  run.Samples,
	})
	if err != nil {
		o.cfg.Log.Error("artifact write failed", zap.String("scenario", sc.Name), zap.Error(err))
	} else {
		fmt.Fprintf(out, "Results saved to: %s\n", path)
	}

	if o.cfg.History != nil {
		item := storage.HistoryItem{
			ID:        run.ID,
			Timestamp: start,
			Scenario:  run.Scenario,
			Profile:   run.Profile,
			Summary:   summary,
		}
		if err := o.cfg.History.Save(item); err != nil {
			o.cfg.Log.Error("history save failed", zap.String("run", run.ID), zap.Error(err))
		}
	}

	fmt.Fprintf(out, "%s completed\n", sc.Name)
	return run, nil
}

// RunAll executes the builtin scenarios in order with a cooldown
// between consecutive ones, then builds the merged demo report.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	builtin := Builtin()

	fmt.Fprintln(o.cfg.Out, "RUNNING ALL AUTOSCALING DEMO SCENARIOS")
	fmt.Fprintln(o.cfg.Out, strings.Repeat("=", 70))

	for i, sc := range builtin {
		if _, err := o.RunScenario(ctx, sc); err != nil {
			return err
		}

		if i < len(builtin)-1 {
			fmt.Fprintf(o.cfg.Out, "\nCooling down for %s before the next scenario...\n", o.cfg.Cooldown)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.cfg.Cooldown):
			}
		}
	}

	path, err := report.BuildDemoReport(o.cfg.OutDir, Names(), o.cfg.Out)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.cfg.Out, "Demo report saved to: %s\n", path)
	return nil
}
