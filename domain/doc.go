// Package domain implements the computation-domain hierarchy that schedules
// and composes the subsystems of a coda application.
//
// A Domain is a unit of recurring work with an init/cleanup lifecycle. Domains
// compose into trees: a parent owns an ordered list of synchronous subdomains
// split into a "prepend" group, which ticks strictly before the parent's own
// per-cycle work, and an "append" group, which ticks strictly after. Subdomain
// lists can be reconfigured at runtime; structural changes block until the
// in-flight tick pass releases the per-domain lock.
//
// # Domain Kinds
//
//   - Synchronous: performs one non-blocking unit of work per Tick call. The
//     only kind of domain that may be a child of another domain.
//   - Asynchronous: manages its own run loop through Start/Stop, with the
//     caller providing the execution context. Start may block for the
//     domain's entire run; Stop must then be called from another goroutine.
//   - ThreadDomain: an asynchronous domain that owns its goroutine. Start
//     returns immediately; the run outcome is observed through Future handles
//     for "asynchronous initialization completed" and "run loop finished".
//
// # Composition Example
//
//	root := audio.New(audio.NewOptions())
//	sim := coda.NewSimulationStep(stepFunc)
//	root.NewSubDomain(sim, true) // sim ticks before each audio block
//	root.Init(nil)
//	root.Start()
//
// # Thread Safety
//
// All mutation and iteration of a domain's subdomain list happens under one
// per-domain lock. AddSubDomain and RemoveSubDomain therefore block while a
// tick pass is running and complete when the pass ends; there is no timeout,
// which is an accepted cost of the locking discipline rather than an error.
// The process-wide tag registry is guarded by its own single lock, distinct
// from every per-domain lock.
package domain
