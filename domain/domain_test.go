package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDomain is a synchronous domain that records lifecycle activity.
type recordingDomain struct {
	SynchronousBase

	name string
	log  *eventLog

	initResult bool
	tickResult bool

	mu        sync.Mutex
	initCalls int
	tickCalls int
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

func newRecordingDomain(name string, log *eventLog) *recordingDomain {
	d := &recordingDomain{name: name, log: log, initResult: true, tickResult: true}
	d.Bind(d)
	return d
}

func (d *recordingDomain) Init(parent Domain) bool {
	if d.Initialized() {
		return true
	}
	d.mu.Lock()
	d.initCalls++
	d.mu.Unlock()
	if !d.initResult {
		return false
	}
	return d.SynchronousBase.Init(parent)
}

func (d *recordingDomain) Tick() bool {
	d.mu.Lock()
	d.tickCalls++
	d.mu.Unlock()
	start := time.Now()
	ok := d.TickSubdomains(true)
	// The domain's own work runs between the two subdomain passes.
	if d.log != nil {
		d.log.add(d.name)
	}
	if !d.tickResult {
		ok = false
	}
	if !d.TickSubdomains(false) {
		ok = false
	}
	d.RecordTick(time.Since(start), ok)
	return ok
}

func (d *recordingDomain) ticks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tickCalls
}

func (d *recordingDomain) inits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initCalls
}

func TestInitIsIdempotent(t *testing.T) {
	d := newRecordingDomain("d", nil)

	require.True(t, d.Init(nil))
	require.True(t, d.Initialized())

	// A second init succeeds without repeating any work.
	require.True(t, d.Init(nil))
	assert.True(t, d.Initialized())
	assert.Equal(t, 1, d.inits())
}

func TestCleanupIsIdempotent(t *testing.T) {
	d := newRecordingDomain("d", nil)
	require.True(t, d.Init(nil))

	require.True(t, d.Cleanup(nil))
	assert.False(t, d.Initialized())

	require.True(t, d.Cleanup(nil))
	assert.False(t, d.Initialized())
}

func TestCleanupToleratesFailedInit(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	child := newRecordingDomain("child", nil)
	child.initResult = false
	parent.AddSubDomain(child, true)

	require.False(t, parent.Init(nil))
	assert.False(t, parent.Initialized())

	// Cleanup on the partially initialized tree must still succeed.
	assert.True(t, parent.Cleanup(nil))
	assert.False(t, parent.Initialized())
}

func TestPrependGroupOrderIsMostRecentFirst(t *testing.T) {
	log := &eventLog{}
	parent := newRecordingDomain("parent", log)
	a := newRecordingDomain("a", log)
	b := newRecordingDomain("b", log)
	c := newRecordingDomain("c", log)

	parent.AddSubDomain(a, true)
	parent.AddSubDomain(b, true)
	parent.AddSubDomain(c, false)
	require.True(t, parent.Init(nil))
	require.True(t, parent.Tick())

	// b was prepended last so it runs first; append entries keep
	// insertion order and run after the parent's own work.
	assert.Equal(t, []string{"b", "a", "parent", "c"}, log.snapshot())
}

func TestTickOrderPrependBodyAppend(t *testing.T) {
	log := &eventLog{}
	pre := newRecordingDomain("pre", log)
	post := newRecordingDomain("post", log)

	body := NewTickFunc(func(dt float64) bool {
		log.add("body")
		return true
	})
	body.AddSubDomain(pre, true)
	body.AddSubDomain(post, false)
	require.True(t, body.Init(nil))
	require.True(t, body.Tick())

	assert.Equal(t, []string{"pre", "body", "post"}, log.snapshot())
}

func TestTickContinuesAfterFailure(t *testing.T) {
	log := &eventLog{}
	parent := newRecordingDomain("parent", log)
	bad := newRecordingDomain("bad", log)
	bad.tickResult = false
	good := newRecordingDomain("good", log)

	parent.AddSubDomain(good, true)
	parent.AddSubDomain(bad, true)
	require.True(t, parent.Init(nil))

	// The pass fails overall but every entry is still attempted.
	assert.False(t, parent.Tick())
	assert.Equal(t, 1, bad.ticks())
	assert.Equal(t, 1, good.ticks())
}

func TestRemoveSubDomainKeepsOrder(t *testing.T) {
	log := &eventLog{}
	parent := newRecordingDomain("parent", log)
	a := newRecordingDomain("a", log)
	b := newRecordingDomain("b", log)
	c := newRecordingDomain("c", log)

	parent.AddSubDomain(a, false)
	parent.AddSubDomain(b, false)
	parent.AddSubDomain(c, false)
	require.True(t, parent.Init(nil))

	require.True(t, parent.RemoveSubDomain(b))
	require.True(t, parent.Tick())

	assert.Equal(t, []string{"parent", "a", "c"}, log.snapshot())
	assert.Equal(t, 0, b.ticks())
}

func TestRemoveAllSubDomains(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	parent.AddSubDomain(newRecordingDomain("a", nil), true)
	parent.AddSubDomain(newRecordingDomain("b", nil), false)

	require.True(t, parent.RemoveSubDomain(nil))
	assert.Equal(t, 0, parent.SubDomainCount(true))
	assert.Equal(t, 0, parent.SubDomainCount(false))
}

func TestNewSubDomainInitializesWhenParentInitialized(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	require.True(t, parent.Init(nil))

	child := newRecordingDomain("child", nil)
	got := parent.NewSubDomain(child, false)
	require.NotNil(t, got)
	assert.True(t, child.Initialized())
}

func TestNewSubDomainDefersInitWhenParentUninitialized(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	child := newRecordingDomain("child", nil)

	got := parent.NewSubDomain(child, true)
	require.NotNil(t, got)
	assert.False(t, child.Initialized())

	require.True(t, parent.Init(nil))
	assert.True(t, child.Initialized())
}

func TestNewSubDomainReturnsNilOnFailedInit(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	require.True(t, parent.Init(nil))

	child := newRecordingDomain("child", nil)
	child.initResult = false
	got := parent.NewSubDomain(child, false)
	assert.Nil(t, got)
	assert.Equal(t, 0, parent.SubDomainCount(false))
}

func TestNewSubDomainPanicsOnNilChild(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	assert.Panics(t, func() {
		parent.NewSubDomain(nil, false)
	})
	assert.Panics(t, func() {
		var typedNil *recordingDomain
		parent.NewSubDomain(typedNil, false)
	})
}

func TestThreeLevelTreeLifecycle(t *testing.T) {
	log := &eventLog{}
	root := newRecordingDomain("root", log)
	mid := newRecordingDomain("mid", log)
	leaf := newRecordingDomain("leaf", log)

	root.AddSubDomain(mid, true)
	mid.AddSubDomain(leaf, false)

	require.True(t, root.Init(nil))
	assert.True(t, mid.Initialized())
	assert.True(t, leaf.Initialized())

	require.True(t, root.Tick())
	assert.Equal(t, 1, leaf.ticks())

	require.True(t, root.Cleanup(nil))
	assert.False(t, root.Initialized())
	assert.False(t, mid.Initialized())
	assert.False(t, leaf.Initialized())
}

func TestAddSubDomainBlocksDuringTickThenCompletes(t *testing.T) {
	parent := newRecordingDomain("parent", nil)

	release := make(chan struct{})
	ticking := make(chan struct{})
	slow := NewTickFunc(func(dt float64) bool {
		close(ticking)
		<-release
		return true
	})
	parent.AddSubDomain(slow, true)
	require.True(t, parent.Init(nil))

	tickDone := make(chan struct{})
	go func() {
		parent.Tick()
		close(tickDone)
	}()
	<-ticking

	addDone := make(chan struct{})
	go func() {
		parent.AddSubDomain(newRecordingDomain("late", nil), false)
		close(addDone)
	}()

	// The add must wait for the in-flight tick pass.
	select {
	case <-addDone:
		t.Fatal("AddSubDomain completed while tick pass held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-tickDone
	select {
	case <-addDone:
	case <-time.After(2 * time.Second):
		t.Fatal("AddSubDomain did not complete after tick pass released the lock")
	}
	assert.Equal(t, 1, parent.SubDomainCount(false))
}

func TestRepeatedTickAddCyclesDoNotDeadlock(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	require.True(t, parent.Init(nil))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			parent.AddSubDomain(newRecordingDomain("child", nil), i%2 == 0)
		}
		close(done)
	}()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			parent.Tick()
			return
		case <-deadline:
			t.Fatal("tick/add cycles deadlocked")
		default:
			parent.Tick()
		}
	}
}

func TestTimeDeltaPropagatesToSubdomains(t *testing.T) {
	var seen float64
	child := NewTickFunc(func(dt float64) bool {
		seen = dt
		return true
	})
	parent := newRecordingDomain("parent", nil)
	parent.AddSubDomain(child, true)
	require.True(t, parent.Init(nil))

	parent.SetTimeDelta(0.025)
	require.True(t, parent.Tick())
	assert.InDelta(t, 0.025, seen, 1e-12)
}

func TestCallbackInvocationOrder(t *testing.T) {
	log := &eventLog{}
	d := newRecordingDomain("d", nil)
	d.RegisterInitializeCallback(func(Domain) { log.add("init-1") })
	d.RegisterInitializeCallback(func(Domain) { log.add("init-2") })
	d.RegisterCleanupCallback(func(Domain) { log.add("cleanup-1") })
	d.RegisterCleanupCallback(func(Domain) { log.add("cleanup-2") })

	require.True(t, d.Init(nil))
	require.True(t, d.Cleanup(nil))
	assert.Equal(t, []string{"init-1", "init-2", "cleanup-1", "cleanup-2"}, log.snapshot())
}

func TestCallbacksReceiveBoundDomain(t *testing.T) {
	d := newRecordingDomain("d", nil)
	var got Domain
	d.RegisterInitializeCallback(func(dom Domain) { got = dom })
	require.True(t, d.Init(nil))

	bound, ok := got.(*recordingDomain)
	require.True(t, ok)
	assert.Same(t, d, bound)
}

func TestStatsRecordOneEntryPerTick(t *testing.T) {
	parent := newRecordingDomain("parent", nil)
	bad := newRecordingDomain("bad", nil)
	bad.tickResult = false
	parent.AddSubDomain(bad, true)
	require.True(t, parent.Init(nil))

	parent.Tick()
	parent.Tick()

	// One entry per full tick cycle, not one per subdomain pass.
	snap := parent.Stats().Snapshot()
	assert.Equal(t, uint64(2), snap.Ticks)
	assert.Equal(t, uint64(2), snap.Failures)

	badSnap := bad.Stats().Snapshot()
	assert.Equal(t, uint64(2), badSnap.Ticks)
}

func TestTickFuncRecordsOneEntryPerTick(t *testing.T) {
	d := NewTickFunc(func(float64) bool { return true })
	require.True(t, d.Init(nil))

	require.True(t, d.Tick())
	require.True(t, d.Tick())
	require.True(t, d.Tick())

	snap := d.Stats().Snapshot()
	assert.Equal(t, uint64(3), snap.Ticks)
	assert.Equal(t, uint64(0), snap.Failures)
}

func TestCapabilities(t *testing.T) {
	d := newRecordingDomain("d", nil)
	assert.Equal(t, CapNone, d.Capabilities())

	d.SetCapabilities(CapSimulator | CapAudioIO)
	assert.True(t, d.Capabilities().Has(CapSimulator))
	assert.True(t, d.Capabilities().Has(CapAudioIO))
	assert.False(t, d.Capabilities().Has(CapOSC))
	assert.Equal(t, "simulator|audio", d.Capabilities().String())
}
