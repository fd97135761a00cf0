package domain

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ThreadDomain is the embeddable base for asynchronous domains that own
// their background goroutine. StartThread launches the goroutine and returns
// immediately; the two phases of the run are observable independently, so a
// caller can tell "failed to initialize asynchronously" apart from "ran and
// then failed":
//
//   - AsyncInitResult resolves once the setup phase completes.
//   - WaitForDomain resolves once the run loop finishes, with its result.
//
// Stop on a concrete domain is only meaningful after StartThread; JoinThread
// guards against that misuse by returning true when no goroutine is running.
type ThreadDomain struct {
	AsyncBase

	threadMu      sync.Mutex
	threadRunning bool
	initResult    *Future
	runResult     *Future
}

// StartThread launches the background goroutine. The setup function runs
// first and resolves the async-init future with its result; when setup fails
// the run function is skipped and the run future resolves to false. Returns
// true if the goroutine was launched or one is already running.
func (t *ThreadDomain) StartThread(setup, run func() bool) bool {
	t.threadMu.Lock()
	defer t.threadMu.Unlock()
	if t.threadRunning {
		return true
	}
	// Adopt futures handed out before this start; replace resolved ones
	// left over from a previous run.
	if t.initResult == nil || t.resolved(t.initResult) {
		t.initResult = NewFuture()
	}
	if t.runResult == nil || t.resolved(t.runResult) {
		t.runResult = NewFuture()
	}
	initResult, runResult := t.initResult, t.runResult
	t.threadRunning = true

	go func() {
		ok := true
		if setup != nil {
			ok = setup()
		}
		initResult.resolve(ok)
		result := ok
		if ok && run != nil {
			result = run()
		}
		runResult.resolve(result)
		t.threadMu.Lock()
		t.threadRunning = false
		t.threadMu.Unlock()
	}()

	logrus.WithFields(logrus.Fields{
		"function":     "ThreadDomain.StartThread",
		"capabilities": t.Capabilities().String(),
	}).Debug("background goroutine launched")
	return true
}

func (t *ThreadDomain) resolved(f *Future) bool {
	_, done := f.TryGet()
	return done
}

// WaitForDomain returns the future for the run loop's final result. It may
// be requested before the thread starts; the next StartThread resolves it.
func (t *ThreadDomain) WaitForDomain() *Future {
	t.threadMu.Lock()
	defer t.threadMu.Unlock()
	if t.runResult == nil {
		t.runResult = NewFuture()
	}
	return t.runResult
}

// AsyncInitResult returns the future that resolves when the asynchronous
// setup phase completes.
func (t *ThreadDomain) AsyncInitResult() *Future {
	t.threadMu.Lock()
	defer t.threadMu.Unlock()
	if t.initResult == nil {
		t.initResult = NewFuture()
	}
	return t.initResult
}

// ThreadRunning reports whether the background goroutine is live.
func (t *ThreadDomain) ThreadRunning() bool {
	t.threadMu.Lock()
	defer t.threadMu.Unlock()
	return t.threadRunning
}

// JoinThread blocks until the background goroutine finishes and returns the
// run result. Calling it with no goroutine running is a no-op returning true.
func (t *ThreadDomain) JoinThread() bool {
	t.threadMu.Lock()
	running := t.threadRunning
	runResult := t.runResult
	t.threadMu.Unlock()
	if runResult != nil {
		if value, done := runResult.TryGet(); done {
			return value
		}
	}
	if !running || runResult == nil {
		return true
	}
	return runResult.Get()
}
