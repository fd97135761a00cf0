package domain

import "sync"

// Asynchronous is a domain that manages its own run loop through Start and
// Stop but leaves thread creation to the caller.
//
// Start assumes Init already succeeded. When Start returns, the domain is
// stopped, regardless of whether it completed on its own or honored a stop
// request; implementations must guarantee that post-condition. When Start
// blocks, Stop can only be called from a different goroutine and must be
// safe to invoke from there. Both Start and Cleanup must work after Stop.
type Asynchronous interface {
	Domain

	// Start runs the domain. It may block for the domain's entire run.
	Start() bool

	// Stop requests that a running domain exit its loop.
	Stop() bool
}

// AsyncBase extends DomainBase with the start/stop callback lists shared by
// asynchronous domain implementations.
type AsyncBase struct {
	DomainBase

	asyncCbMu      sync.Mutex
	startCallbacks []func(Domain)
	stopCallbacks  []func(Domain)
}

// RegisterStartCallback appends a closure invoked after the domain is set up
// to start, before it enters its blocking loop.
func (a *AsyncBase) RegisterStartCallback(callback func(Domain)) {
	a.asyncCbMu.Lock()
	defer a.asyncCbMu.Unlock()
	a.startCallbacks = append(a.startCallbacks, callback)
}

// RegisterStopCallback appends a closure invoked on the stop request, before
// the domain actually stops.
func (a *AsyncBase) RegisterStopCallback(callback func(Domain)) {
	a.asyncCbMu.Lock()
	defer a.asyncCbMu.Unlock()
	a.stopCallbacks = append(a.stopCallbacks, callback)
}

// CallStartCallbacks fires the start callbacks in registration order.
func (a *AsyncBase) CallStartCallbacks() {
	a.asyncCbMu.Lock()
	callbacks := make([]func(Domain), len(a.startCallbacks))
	copy(callbacks, a.startCallbacks)
	a.asyncCbMu.Unlock()
	for _, callback := range callbacks {
		callback(a.self())
	}
}

// CallStopCallbacks fires the stop callbacks in registration order.
func (a *AsyncBase) CallStopCallbacks() {
	a.asyncCbMu.Lock()
	callbacks := make([]func(Domain), len(a.stopCallbacks))
	copy(callbacks, a.stopCallbacks)
	a.asyncCbMu.Unlock()
	for _, callback := range callbacks {
		callback(a.self())
	}
}
