package domain

import "sync"

// Future is a one-shot boolean result that resolves exactly once.
//
// ThreadDomain uses two of these per run: one for "asynchronous
// initialization completed" and one for "run loop finished with result".
// A Future is safe for concurrent use by multiple goroutines.
type Future struct {
	done chan struct{}

	mu       sync.Mutex
	resolved bool
	value    bool
}

// NewFuture returns an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve sets the result. Second and later calls are ignored.
func (f *Future) resolve(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return
	}
	f.resolved = true
	f.value = v
	close(f.done)
}

// Done returns a channel that is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves and returns its value.
func (f *Future) Get() bool {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// TryGet returns the value without blocking. The second result reports
// whether the future has resolved.
func (f *Future) TryGet() (value, resolved bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.resolved
}
