package loadgen

import (
	"context"
	"sync"
	"time"

	"scaledemo/internal/stats"
)

const defaultTick = 100 * time.Millisecond

// Request is the fixed request shape a profile drives against the target.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Config bounds one load phase.
type Config struct {
	Concurrency int // max in-flight requests, excess demand queues
	Tick        time.Duration
	Request     Request
}

// Scheduler paces request issuance to follow a profile's target rate.
// Results are writer-confined: the slice must only be read after Run
// returns.
type Scheduler struct {
	cfg    Config
	issuer *Issuer
	live   *stats.Live

	mu      sync.Mutex
	results []Result
}

func NewScheduler(cfg Config, issuer *Issuer) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = defaultTick
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 200
	}
	return &Scheduler{
		cfg:    cfg,
		issuer: issuer,
		live:   stats.NewLive(),
	}
}

// Live exposes in-flight counters for progress reporting.
func (s *Scheduler) Live() *stats.Live {
	return s.live
}

// Run drives the issuer until the profile is exhausted or ctx is
// cancelled, then waits for in-flight requests to settle. Individual
// request failures are recorded, never propagated.
func (s *Scheduler) Run(ctx context.Context, p Profile) []Result {
	if p.Kind == KindBurst {
		s.runBurst(ctx, p)
		return s.snapshot()
	}
	if p.Duration <= 0 {
		return nil
	}
	s.runPaced(ctx, p)
	return s.snapshot()
}

// runPaced discretizes the run into ticks. Each tick owes
// targetRPS*tick requests; the fractional remainder carries forward so
// the long-run rate does not drift.
func (s *Scheduler) runPaced(ctx context.Context, p Profile) {
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	start := time.Now()
	carry := 0.0

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			if elapsed >= p.Duration {
				wg.Wait()
				return
			}

			owed := p.TargetRPS(elapsed)*s.cfg.Tick.Seconds() + carry
			n := int(owed)
			carry = owed - float64(n)

			for i := 0; i < n; i++ {
				wg.Add(1)
				go s.dispatch(ctx, sem, &wg, s.cfg.Request)
			}
		}
	}
}

// runBurst launches a fixed count of requests with a fixed inter-launch
// stagger, then waits for all of them to settle.
func (s *Scheduler) runBurst(ctx context.Context, p Profile) {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = s.cfg.Concurrency
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := 0; i < p.RequestCount; i++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		default:
		}

		wg.Add(1)
		go s.dispatch(ctx, sem, &wg, s.cfg.Request)

		if p.Stagger > 0 && i < p.RequestCount-1 {
			select {
			case <-ctx.Done():
				wg.Wait()
				return
			case <-time.After(p.Stagger):
			}
		}
	}
	wg.Wait()
}

// dispatch blocks on the semaphore (backpressure, not loss) before
// issuing a single request.
func (s *Scheduler) dispatch(ctx context.Context, sem chan struct{}, wg *sync.WaitGroup, req Request) {
	defer wg.Done()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-sem }()

	s.live.IncInflight()
	res := s.issuer.Issue(ctx, req.Method, req.Path, req.Body)
	s.live.DecInflight()

	s.live.AddResult(res.Success(), res.Latency.Microseconds())

	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
}

func (s *Scheduler) snapshot() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}
