package domain

import "time"

// SynchronousBase is the embeddable implementation for tick-based domains.
// Its default Tick runs the prepend group and then the append group; domains
// with per-cycle work of their own override Tick, place that work between
// the two TickSubdomains calls, and record one stats entry for the full
// cycle.
type SynchronousBase struct {
	DomainBase
}

// Tick runs one pass over both subdomain groups and reports whether every
// subdomain succeeded. One stats entry is recorded per call.
func (s *SynchronousBase) Tick() bool {
	start := time.Now()
	ok := s.TickSubdomains(true)
	if !s.TickSubdomains(false) {
		ok = false
	}
	s.RecordTick(time.Since(start), ok)
	return ok
}

// TickFunc wraps a function as a Synchronous domain. The function is invoked
// between the prepend and append subdomain passes with the current time
// delta.
type TickFunc struct {
	SynchronousBase
	fn func(dt float64) bool
}

// NewTickFunc returns a Synchronous domain whose per-cycle work is fn.
// A nil fn yields a domain that only ticks its subdomains.
func NewTickFunc(fn func(dt float64) bool) *TickFunc {
	t := &TickFunc{fn: fn}
	t.Bind(t)
	return t
}

// Tick runs the prepend group, the wrapped function, then the append group.
func (t *TickFunc) Tick() bool {
	start := time.Now()
	ok := t.TickSubdomains(true)
	if t.fn != nil && !t.fn(t.TimeDelta()) {
		ok = false
	}
	if !t.TickSubdomains(false) {
		ok = false
	}
	t.RecordTick(time.Since(start), ok)
	return ok
}
