package param

import "sync"

// Int is a discrete integer control with a clamped range and change
// notification. Safe for concurrent use.
type Int struct {
	meta

	mu        sync.RWMutex
	value     int64
	def       int64
	min       int64
	max       int64
	callbacks []func(int64)
}

// NewInt creates an integer parameter clamped to [min, max]; pass min == max
// to leave it unbounded.
func NewInt(name, group string, def, min, max int64) *Int {
	return &Int{
		meta:  meta{name: name, group: group},
		value: def,
		def:   def,
		min:   min,
		max:   max,
	}
}

// Get returns the current value.
func (p *Int) Get() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Default returns the construction-time default value.
func (p *Int) Default() int64 { return p.def }

// Min returns the lower bound of the range.
func (p *Int) Min() int64 { return p.min }

// Max returns the upper bound of the range.
func (p *Int) Max() int64 { return p.max }

func (p *Int) clamp(v int64) int64 {
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

// Set clamps v to the range, stores it, and fires the change callbacks.
func (p *Int) Set(v int64) {
	p.mu.Lock()
	p.value = p.clamp(v)
	value := p.value
	callbacks := make([]func(int64), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()
	for _, callback := range callbacks {
		callback(value)
	}
}

// SetNoCallbacks stores the clamped value without notifying callbacks.
func (p *Int) SetNoCallbacks(v int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = p.clamp(v)
}

// RegisterChangeCallback appends a closure invoked on every Set.
func (p *Int) RegisterChangeCallback(callback func(int64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, callback)
}

// Bool is a toggle control with change notification.
type Bool struct {
	meta

	mu        sync.RWMutex
	value     bool
	def       bool
	callbacks []func(bool)
}

// NewBool creates a boolean parameter.
func NewBool(name, group string, def bool) *Bool {
	return &Bool{
		meta:  meta{name: name, group: group},
		value: def,
		def:   def,
	}
}

// Get returns the current value.
func (p *Bool) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Default returns the construction-time default value.
func (p *Bool) Default() bool { return p.def }

// Set stores v and fires the change callbacks.
func (p *Bool) Set(v bool) {
	p.mu.Lock()
	p.value = v
	callbacks := make([]func(bool), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()
	for _, callback := range callbacks {
		callback(v)
	}
}

// SetNoCallbacks stores the value without notifying callbacks.
func (p *Bool) SetNoCallbacks(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
}

// RegisterChangeCallback appends a closure invoked on every Set.
func (p *Bool) RegisterChangeCallback(callback func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, callback)
}

// Choice selects one element from a fixed list by index. Out-of-range
// indices are clamped to the list bounds.
type Choice struct {
	meta

	elements []string

	mu        sync.RWMutex
	current   int
	callbacks []func(int)
}

// NewChoice creates a choice parameter over elements, starting at index 0.
func NewChoice(name, group string, elements []string) *Choice {
	copied := make([]string, len(elements))
	copy(copied, elements)
	return &Choice{
		meta:     meta{name: name, group: group},
		elements: copied,
	}
}

// Elements returns the selectable values.
func (p *Choice) Elements() []string {
	out := make([]string, len(p.elements))
	copy(out, p.elements)
	return out
}

// Get returns the current index.
func (p *Choice) Get() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Current returns the currently selected element, or "" for an empty list.
func (p *Choice) Current() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.elements) == 0 {
		return ""
	}
	return p.elements[p.current]
}

// Set clamps index to the list bounds, stores it, and fires the change
// callbacks.
func (p *Choice) Set(index int) {
	p.mu.Lock()
	if index < 0 {
		index = 0
	}
	if n := len(p.elements); n > 0 && index >= n {
		index = n - 1
	}
	p.current = index
	callbacks := make([]func(int), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()
	for _, callback := range callbacks {
		callback(index)
	}
}

// RegisterChangeCallback appends a closure invoked on every Set.
func (p *Choice) RegisterChangeCallback(callback func(int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, callback)
}
