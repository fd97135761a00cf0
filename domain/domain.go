package domain

import (
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Parameter is a continuous runtime control exposed by a domain, as opposed
// to immutable construction-time configuration. The concrete types live in
// the param package; domains only need identity to list them.
type Parameter interface {
	Name() string
	Group() string
	Address() string
}

// Domain is the lifecycle contract shared by every computation domain.
//
// Init and Cleanup must both be safe to call repeatedly: a second Init on an
// initialized domain succeeds without re-acquiring resources, and Cleanup on
// an already-clean domain is a no-op returning true.
type Domain interface {
	// Init prepares the domain for operation. Implementations embedding
	// DomainBase must initialize prepend subdomains before their own setup
	// and append subdomains after it.
	Init(parent Domain) bool

	// Cleanup releases the domain's resources and resets it to the
	// uninitialized state. It must tolerate a partially failed Init.
	Cleanup(parent Domain) bool

	// Initialized reports whether the last Init fully succeeded.
	Initialized() bool

	// TimeDelta returns the elapsed time in seconds since the previous
	// processing pass, or 0 for domains that do not track it.
	TimeDelta() float64

	// SetTimeDelta records the elapsed time for the current pass.
	SetTimeDelta(delta float64)

	// Capabilities returns the immutable capability descriptor.
	Capabilities() Capability

	// Parameters returns the continuous controls exposed by this domain.
	Parameters() []Parameter

	// RegisterParameter exposes a continuous control on this domain.
	RegisterParameter(p Parameter)

	// RegisterObject lets the domain track an arbitrary owned resource
	// without knowing its concrete type.
	RegisterObject(obj any) bool

	// UnregisterObject releases an object registered with RegisterObject.
	UnregisterObject(obj any) bool
}

// Synchronous is a domain whose single unit of work is one non-blocking Tick
// call. Only Synchronous domains may be children of another domain.
type Synchronous interface {
	Domain

	// Tick performs exactly one unit of work and reports success.
	Tick() bool
}

type subDomainEntry struct {
	domain  Synchronous
	prepend bool
}

// DomainBase carries the composition and locking engine shared by all domain
// implementations. Embed it and, from the outer type's constructor, call Bind
// so callbacks and the registry see the concrete domain rather than the base.
type DomainBase struct {
	owner Domain

	timeDrift    atomic.Uint64 // float64 bits
	capabilities Capability
	initialized  atomic.Bool

	// subMu guards both mutation and iteration of subDomains. Structural
	// changes requested during a tick pass block until the pass ends.
	subMu      sync.Mutex
	subDomains []subDomainEntry

	cbMu                sync.Mutex
	initializeCallbacks []func(Domain)
	cleanupCallbacks    []func(Domain)

	paramMu sync.RWMutex
	params  []Parameter

	stats TickStats
}

// Bind records the concrete domain embedding this base. Callbacks and
// subdomain initialization receive the bound value instead of the base.
func (b *DomainBase) Bind(owner Domain) {
	b.owner = owner
}

// self returns the bound concrete domain, or the base itself when unbound.
func (b *DomainBase) self() Domain {
	if b.owner != nil {
		return b.owner
	}
	return b
}

// Init marks the domain initialized after running the prepend subdomain
// group, the registered initialize callbacks, and the append subdomain group,
// in that order. Repeated calls on an initialized domain return true without
// repeating any work. A failed pass leaves the domain uninitialized but safe
// to Cleanup.
func (b *DomainBase) Init(parent Domain) bool {
	if b.initialized.Load() {
		return true
	}
	ok := b.InitializeSubdomains(true)
	b.CallInitializeCallbacks()
	if !b.InitializeSubdomains(false) {
		ok = false
	}
	b.initialized.Store(ok)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function":     "DomainBase.Init",
			"capabilities": b.capabilities.String(),
		}).Error("domain initialization failed")
	}
	return ok
}

// Cleanup tears down both subdomain groups, fires the cleanup callbacks, and
// resets the domain to uninitialized. Cleaning an already-clean domain is a
// no-op returning true. The domain's entries in the public tag registry are
// removed; re-register after a later Init if the domain should stay
// discoverable.
func (b *DomainBase) Cleanup(parent Domain) bool {
	ok := b.CleanupSubdomains(true)
	if b.initialized.Load() {
		b.CallCleanupCallbacks()
	}
	if !b.CleanupSubdomains(false) {
		ok = false
	}
	b.initialized.Store(false)
	RemovePublicDomain(b.self())
	return ok
}

// Initialized reports whether the last Init fully succeeded.
func (b *DomainBase) Initialized() bool {
	return b.initialized.Load()
}

// SetInitialized overrides the initialized flag. Intended for domain
// implementations that perform their own setup between the subdomain passes.
func (b *DomainBase) SetInitialized(v bool) {
	b.initialized.Store(v)
}

// TimeDelta returns the elapsed time in seconds since the previous pass.
func (b *DomainBase) TimeDelta() float64 {
	return math.Float64frombits(b.timeDrift.Load())
}

// SetTimeDelta records the elapsed time for the current pass.
func (b *DomainBase) SetTimeDelta(delta float64) {
	b.timeDrift.Store(math.Float64bits(delta))
}

// Capabilities returns the immutable capability descriptor.
func (b *DomainBase) Capabilities() Capability {
	return b.capabilities
}

// SetCapabilities sets the capability descriptor. Call once, before Init;
// the descriptor is read-only afterward.
func (b *DomainBase) SetCapabilities(c Capability) {
	b.capabilities = c
}

// Stats returns the domain's tick timing aggregation.
func (b *DomainBase) Stats() *TickStats {
	return &b.stats
}

// RecordTick records the duration and result of one unit of the domain's own
// work. Run loops call this once per cycle.
func (b *DomainBase) RecordTick(d time.Duration, ok bool) {
	b.stats.record(d, ok)
}

// NewSubDomain attaches child as a subdomain. Passing a nil handle is a
// contract violation and panics; the requirement that children be synchronous
// is enforced by the Synchronous parameter type. If this domain is already
// initialized the child is initialized immediately, and nil is returned when
// that initialization fails. Otherwise the child is queued for initialization
// together with this domain.
func (b *DomainBase) NewSubDomain(child Synchronous, prepend bool) Synchronous {
	if child == nil || isNilHandle(child) {
		panic("domain: subdomain must be a non-nil synchronous domain")
	}
	if b.initialized.Load() {
		if !child.Init(b.self()) {
			logrus.WithFields(logrus.Fields{
				"function": "DomainBase.NewSubDomain",
				"prepend":  prepend,
			}).Error("subdomain failed immediate initialization")
			return nil
		}
	}
	b.AddSubDomain(child, prepend)
	return child
}

func isNilHandle(s Synchronous) bool {
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// AddSubDomain inserts subDomain into the subdomain list. Prepend insertions
// go to the front of the prepend group, so the most recently prepended domain
// ticks first; append insertions preserve insertion order. The call blocks
// while a tick pass holds the subdomain lock and completes when the pass
// ends. The caller is responsible for the subdomain's readiness if this
// domain is already running; AddSubDomain never initializes on its own.
func (b *DomainBase) AddSubDomain(subDomain Synchronous, prepend bool) bool {
	if subDomain == nil || isNilHandle(subDomain) {
		panic("domain: subdomain must be a non-nil synchronous domain")
	}
	b.subMu.Lock()
	defer b.subMu.Unlock()
	entry := subDomainEntry{domain: subDomain, prepend: prepend}
	if prepend {
		b.subDomains = append([]subDomainEntry{entry}, b.subDomains...)
	} else {
		b.subDomains = append(b.subDomains, entry)
	}
	logrus.WithFields(logrus.Fields{
		"function":   "DomainBase.AddSubDomain",
		"prepend":    prepend,
		"subdomains": len(b.subDomains),
	}).Debug("subdomain added")
	return true
}

// RemoveSubDomain removes the given subdomain, or every subdomain when nil is
// passed. Remaining entries keep their relative order. Like AddSubDomain,
// the call blocks until any in-flight tick pass releases the lock.
func (b *DomainBase) RemoveSubDomain(subDomain Synchronous) bool {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if subDomain == nil || isNilHandle(subDomain) {
		b.subDomains = nil
		return true
	}
	kept := b.subDomains[:0]
	for _, entry := range b.subDomains {
		if entry.domain != subDomain {
			kept = append(kept, entry)
		}
	}
	b.subDomains = kept
	return true
}

// SubDomainCount returns the number of subdomains in the given group.
func (b *DomainBase) SubDomainCount(pre bool) int {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	n := 0
	for _, entry := range b.subDomains {
		if entry.prepend == pre {
			n++
		}
	}
	return n
}

// InitializeSubdomains initializes the subdomains in one group, in list
// order. Every entry is attempted; the pass succeeds only if every entry
// succeeded. Call twice, once per group, around the domain's own setup.
func (b *DomainBase) InitializeSubdomains(pre bool) bool {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	ok := true
	for _, entry := range b.subDomains {
		if entry.prepend != pre {
			continue
		}
		if !entry.domain.Init(b.self()) {
			logrus.WithFields(logrus.Fields{
				"function": "DomainBase.InitializeSubdomains",
				"prepend":  pre,
			}).Error("subdomain initialization failed")
			ok = false
		}
	}
	return ok
}

// TickSubdomains runs one tick of every subdomain in the given group, in list
// order, propagating this domain's time delta to each child first. The
// subdomain lock is held for the whole pass, so concurrent structural changes
// wait until the pass completes. Every entry is attempted even after a
// failure; the pass reports true only if every entry succeeded. Statistics
// are not recorded here; Tick implementations call RecordTick once around
// the full cycle.
func (b *DomainBase) TickSubdomains(pre bool) bool {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	ok := true
	delta := b.TimeDelta()
	for _, entry := range b.subDomains {
		if entry.prepend != pre {
			continue
		}
		entry.domain.SetTimeDelta(delta)
		if !entry.domain.Tick() {
			logrus.WithFields(logrus.Fields{
				"function": "DomainBase.TickSubdomains",
				"prepend":  pre,
			}).Warn("subdomain tick failed")
			ok = false
		}
	}
	return ok
}

// CleanupSubdomains cleans up the subdomains in one group, in list order.
// Every entry is attempted; the pass reports true only if every entry
// succeeded.
func (b *DomainBase) CleanupSubdomains(pre bool) bool {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	ok := true
	for _, entry := range b.subDomains {
		if entry.prepend != pre {
			continue
		}
		if !entry.domain.Cleanup(b.self()) {
			ok = false
		}
	}
	return ok
}

// RegisterInitializeCallback appends a closure invoked during Init, in
// registration order. Callbacks live for the domain's lifetime; there is no
// removal API.
func (b *DomainBase) RegisterInitializeCallback(callback func(Domain)) {
	b.cbMu.Lock()
	defer b.cbMu.Unlock()
	b.initializeCallbacks = append(b.initializeCallbacks, callback)
}

// RegisterCleanupCallback appends a closure invoked during Cleanup, in
// registration order.
func (b *DomainBase) RegisterCleanupCallback(callback func(Domain)) {
	b.cbMu.Lock()
	defer b.cbMu.Unlock()
	b.cleanupCallbacks = append(b.cleanupCallbacks, callback)
}

// CallInitializeCallbacks fires the registered initialize callbacks. Domain
// implementations call this after their own setup succeeds.
func (b *DomainBase) CallInitializeCallbacks() {
	b.cbMu.Lock()
	callbacks := make([]func(Domain), len(b.initializeCallbacks))
	copy(callbacks, b.initializeCallbacks)
	b.cbMu.Unlock()
	for _, callback := range callbacks {
		callback(b.self())
	}
}

// CallCleanupCallbacks fires the registered cleanup callbacks. Domain
// implementations call this before tearing down their own resources.
func (b *DomainBase) CallCleanupCallbacks() {
	b.cbMu.Lock()
	callbacks := make([]func(Domain), len(b.cleanupCallbacks))
	copy(callbacks, b.cleanupCallbacks)
	b.cbMu.Unlock()
	for _, callback := range callbacks {
		callback(b.self())
	}
}

// RegisterParameter exposes a continuous control on this domain.
func (b *DomainBase) RegisterParameter(p Parameter) {
	if p == nil {
		return
	}
	b.paramMu.Lock()
	defer b.paramMu.Unlock()
	b.params = append(b.params, p)
}

// Parameters returns a copy of the domain's continuous control list.
func (b *DomainBase) Parameters() []Parameter {
	b.paramMu.RLock()
	defer b.paramMu.RUnlock()
	out := make([]Parameter, len(b.params))
	copy(out, b.params)
	return out
}

// ParameterByAddress returns the first registered parameter with the given
// OSC-style address, or nil.
func (b *DomainBase) ParameterByAddress(address string) Parameter {
	b.paramMu.RLock()
	defer b.paramMu.RUnlock()
	for _, p := range b.params {
		if p.Address() == address {
			return p
		}
	}
	return nil
}

// RegisterObject is a hook for domains that track arbitrary owned resources.
// The base implementation accepts everything and tracks nothing.
func (b *DomainBase) RegisterObject(obj any) bool { return true }

// UnregisterObject is the counterpart of RegisterObject.
func (b *DomainBase) UnregisterObject(obj any) bool { return true }
