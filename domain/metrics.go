package domain

import (
	"sync"
	"time"
)

// TickStats aggregates tick timing for one domain: how many full tick
// cycles ran, how many failed, and how long they took. Tick implementations
// and run loops record one entry per cycle through RecordTick.
type TickStats struct {
	mu sync.RWMutex

	ticks        uint64
	failures     uint64
	lastDuration time.Duration
	totalTime    time.Duration
}

// StatsSnapshot is a point-in-time copy of a domain's tick statistics.
type StatsSnapshot struct {
	Ticks        uint64
	Failures     uint64
	LastDuration time.Duration
	TotalTime    time.Duration
	AvgDuration  time.Duration
}

func (s *TickStats) record(d time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	if !ok {
		s.failures++
	}
	s.lastDuration = d
	s.totalTime += d
}

// Snapshot returns a copy of the current statistics.
func (s *TickStats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := StatsSnapshot{
		Ticks:        s.ticks,
		Failures:     s.failures,
		LastDuration: s.lastDuration,
		TotalTime:    s.totalTime,
	}
	if s.ticks > 0 {
		snap.AvgDuration = s.totalTime / time.Duration(s.ticks)
	}
	return snap
}

// Reset clears all recorded statistics.
func (s *TickStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = 0
	s.failures = 0
	s.lastDuration = 0
	s.totalTime = 0
}
