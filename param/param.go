package param

import (
	"strings"
	"sync"

	"github.com/opd-ai/coda/domain"
)

// meta carries the identity shared by every parameter type.
type meta struct {
	domain.Member

	name  string
	group string
}

// Name returns the parameter's name.
func (m *meta) Name() string { return m.name }

// Group returns the parameter's group, possibly empty.
func (m *meta) Group() string { return m.group }

// Address returns the OSC-style address "/group/name", or "/name" when the
// parameter has no group. Spaces are replaced with underscores.
func (m *meta) Address() string {
	name := strings.ReplaceAll(m.name, " ", "_")
	if m.group == "" {
		return "/" + name
	}
	return "/" + strings.ReplaceAll(m.group, " ", "_") + "/" + name
}

// Parameter is a continuous float64 control with a clamped range and change
// notification. Safe for concurrent use.
type Parameter struct {
	meta

	mu        sync.RWMutex
	value     float64
	def       float64
	min       float64
	max       float64
	callbacks []func(float64)
}

// New creates a float parameter. The value starts at def and Set clamps to
// [min, max]; pass min == max to leave the parameter unbounded.
func New(name, group string, def, min, max float64) *Parameter {
	p := &Parameter{
		meta:  meta{name: name, group: group},
		value: def,
		def:   def,
		min:   min,
		max:   max,
	}
	return p
}

// Get returns the current value.
func (p *Parameter) Get() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Default returns the construction-time default value.
func (p *Parameter) Default() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.def
}

// Min returns the lower bound of the range.
func (p *Parameter) Min() float64 { return p.min }

// Max returns the upper bound of the range.
func (p *Parameter) Max() float64 { return p.max }

func (p *Parameter) clamp(v float64) float64 {
	if p.min == p.max {
		return v
	}
	if v < p.min {
		return p.min
	}
	if v > p.max {
		return p.max
	}
	return v
}

// Set clamps v to the parameter's range, stores it, and fires the change
// callbacks with the clamped value.
func (p *Parameter) Set(v float64) {
	p.mu.Lock()
	p.value = p.clamp(v)
	value := p.value
	callbacks := make([]func(float64), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()
	for _, callback := range callbacks {
		callback(value)
	}
}

// SetNoCallbacks stores the clamped value without notifying callbacks. Use
// it when reflecting a value that originated from a callback, to avoid
// feedback loops.
func (p *Parameter) SetNoCallbacks(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = p.clamp(v)
}

// Reset restores the default value, firing change callbacks.
func (p *Parameter) Reset() {
	p.Set(p.Default())
}

// RegisterChangeCallback appends a closure invoked on every Set, in
// registration order, with the clamped new value.
func (p *Parameter) RegisterChangeCallback(callback func(float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, callback)
}

// RegisterWithDomain attaches the parameter to d (or the member's default
// domain when d is nil) and exposes it in the domain's parameter list.
func (p *Parameter) RegisterWithDomain(d domain.Domain) bool {
	if !p.Member.RegisterWithDomain(d, p) {
		return false
	}
	if parent := p.ParentDomain(); parent != nil {
		parent.RegisterParameter(p)
	}
	return true
}

// UnregisterFromDomain detaches the parameter from d, or from whichever
// domain it is registered with when d is nil.
func (p *Parameter) UnregisterFromDomain(d domain.Domain) {
	p.Member.UnregisterFromDomain(d, p)
}
