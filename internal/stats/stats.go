package stats

import (
	"sync/atomic"
)

// Live holds real-time aggregated metrics for a load phase in flight.
// All counters are updated atomically by the scheduler's request goroutines
// and read by the progress printer.
type Live struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Inflight int64

	// Latency histogram (microseconds)
	Latency *SafeHistogram
}

func NewLive() *Live {
	return &Live{
		Latency: NewSafeHistogram(),
	}
}

func (s *Live) AddResult(success bool, latencyUs int64) {
	atomic.AddUint64(&s.Requests, 1)
	if success {
		atomic.AddUint64(&s.Success, 1)
	} else {
		atomic.AddUint64(&s.Fail, 1)
	}
	s.Latency.Record(latencyUs)
}

func (s *Live) IncInflight() { atomic.AddInt64(&s.Inflight, 1) }
func (s *Live) DecInflight() { atomic.AddInt64(&s.Inflight, -1) }

func (s *Live) GetRequests() uint64 { return atomic.LoadUint64(&s.Requests) }
func (s *Live) GetSuccess() uint64  { return atomic.LoadUint64(&s.Success) }
func (s *Live) GetFail() uint64     { return atomic.LoadUint64(&s.Fail) }
func (s *Live) GetInflight() int64  { return atomic.LoadInt64(&s.Inflight) }

func (s *Live) ErrorRate() float64 {
	reqs := s.GetRequests()
	if reqs == 0 {
		return 0
	}
	return (float64(s.GetFail()) / float64(reqs)) * 100
}

func (s *Live) P50Ms() float64 {
	return float64(s.Latency.ValueAtQuantile(50)) / 1000.0
}

func (s *Live) P99Ms() float64 {
	return float64(s.Latency.ValueAtQuantile(99)) / 1000.0
}
