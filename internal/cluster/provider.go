package cluster

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sample is one observation of the control plane's scaling state.
// Integer fields are zero-filled when the underlying query fails; OK
// distinguishes a failed query from a legitimately idle cluster.
type Sample struct {
	SampledAt         time.Time `json:"sampled_at"`
	RunningPods       int       `json:"running_pods"`
	CurrentReplicas   int       `json:"current_replicas"`
	DesiredReplicas   int       `json:"desired_replicas"`
	CPUUtilizationPct int       `json:"cpu_utilization_pct"`
	OK                bool      `json:"ok"`
}

// StatusLabel compares desired vs current replicas.
func (s Sample) StatusLabel() string {
	switch {
	case s.DesiredReplicas > s.CurrentReplicas:
		return "Scaling Up"
	case s.DesiredReplicas < s.CurrentReplicas:
		return "Scaling Down"
	default:
		return "Stable"
	}
}

// StatusProvider queries the control plane. Query always returns a
// sample and never fails outward.
type StatusProvider interface {
	Query(ctx context.Context) Sample
}

// KubectlConfig selects what the kubectl-backed provider observes.
type KubectlConfig struct {
	Binary    string // kubectl executable, default "kubectl"
	Context   string // optional --context
	Namespace string
	Selector  string // label selector for the workload's pods
	HPAName   string
	Timeout   time.Duration // per-invocation bound
}

func (c *KubectlConfig) applyDefaults() {
	if c.Binary == "" {
		c.Binary = "kubectl"
	}
	if c.Namespace == "" {
		c.Namespace = "cloudapp"
	}
	if c.Selector == "" {
		c.Selector = "app=cloudapp"
	}
	if c.HPAName == "" {
		c.HPAName = "cloudapp-hpa"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// KubectlProvider shells out to the control-plane CLI and parses its
// text output.
type KubectlProvider struct {
	cfg KubectlConfig
	log *zap.Logger
}

func NewKubectlProvider(cfg KubectlConfig, log *zap.Logger) *KubectlProvider {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &KubectlProvider{cfg: cfg, log: log}
}

// Query issues the pod listing and HPA status queries. Failures are
// logged and zero-filled so the monitor loop keeps running.
func (p *KubectlProvider) Query(ctx context.Context) Sample {
	s := Sample{SampledAt: time.Now(), OK: true}

	pods, err := p.run(ctx,
		"get", "pods",
		"-n", p.cfg.Namespace,
		"-l", p.cfg.Selector,
		"--field-selector", "status.phase=Running",
		"--no-headers",
		"-o", "name",
	)
	if err != nil {
		p.log.Warn("pod listing failed", zap.Error(err))
		s.OK = false
	} else {
		s.RunningPods = countLines(pods)
	}

	hpa, err := p.run(ctx,
		"get", "hpa",
		"-n", p.cfg.Namespace,
		p.cfg.HPAName,
		"-o", "jsonpath={.status.currentReplicas},{.status.desiredReplicas},{.status.currentCPUUtilizationPercentage}",
	)
	if err != nil {
		p.log.Warn("hpa status failed", zap.Error(err))
		s.OK = false
		return s
	}

	cur, des, cpu, err := parseHPAStatus(hpa)
	if err != nil {
		p.log.Warn("hpa status unparseable", zap.String("output", hpa), zap.Error(err))
		s.OK = false
		return s
	}
	s.CurrentReplicas = cur
	s.DesiredReplicas = des
	s.CPUUtilizationPct = cpu
	return s
}

func (p *KubectlProvider) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	full := args
	if p.cfg.Context != "" {
		full = append([]string{"--context", p.cfg.Context}, args...)
	}

	out, err := exec.CommandContext(ctx, p.cfg.Binary, full...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", p.cfg.Binary, args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func countLines(out string) int {
	if out == "" {
		return 0
	}
	return len(strings.Split(out, "\n"))
}

// parseHPAStatus parses "current,desired,cpu". Any field may be empty
// (the HPA has not reported it yet) and counts as 0.
func parseHPAStatus(out string) (current, desired, cpu int, err error) {
	parts := strings.Split(out, ",")
	fields := make([]int, 3)
	for i := 0; i < 3 && i < len(parts); i++ {
		f := strings.TrimSpace(parts[i])
		if f == "" {
			continue
		}
		v, convErr := strconv.Atoi(f)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("field %d %q: %w", i, f, convErr)
		}
		fields[i] = v
	}
	return fields[0], fields[1], fields[2], nil
}
