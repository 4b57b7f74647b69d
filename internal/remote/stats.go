package remote

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates the calls seen within the rolling window.
type StatsSnapshot struct {
	Calls    int     `json:"calls"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
}

type call struct {
	at     time.Time
	millis int64
	failed bool
}

// LLMStats keeps summarize call latencies for a rolling window.
type LLMStats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
	now    func() time.Time
}

func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{window: window, now: time.Now}
}

// Record adds a successful call.
func (s *LLMStats) Record(millis int64) {
	s.add(millis, false)
}

// RecordFailure adds a call that did not yield a summary.
func (s *LLMStats) RecordFailure(millis int64) {
	s.add(millis, true)
}

func (s *LLMStats) add(millis int64, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictLocked(now)
	s.calls = append(s.calls, call{at: now, millis: max(millis, 0), failed: failed})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())

	var snap StatsSnapshot
	if len(s.calls) == 0 {
		return snap
	}
	durations := make([]int64, 0, len(s.calls))
	var total int64
	for _, c := range s.calls {
		if c.failed {
			snap.Failures++
		}
		durations = append(durations, c.millis)
		total += c.millis
	}
	slices.Sort(durations)

	snap.Calls = len(durations)
	snap.MinMs = durations[0]
	snap.MaxMs = durations[len(durations)-1]
	snap.AvgMs = float64(total) / float64(len(durations))
	snap.P50Ms = interpolate(durations, 0.50)
	snap.P95Ms = interpolate(durations, 0.95)
	return snap
}

func (s *LLMStats) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.calls = slices.DeleteFunc(s.calls, func(c call) bool {
		return c.at.Before(cutoff)
	})
}

// interpolate returns the q-quantile (0..1) of sorted values with linear
// interpolation between ranks.
func interpolate(sorted []int64, q float64) float64 {
	pos := float64(len(sorted)-1) * q
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
