package coda

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/coda/domain"
)

// SimulationDomain steps a domain tree at a fixed frame rate. Start blocks
// in the calling goroutine until Stop is called from another one, which
// makes it the natural root of an application graph: the main goroutine
// runs the frame loop while thread domains run beside it.
type SimulationDomain struct {
	domain.AsyncBase

	fps float64
	tp  domain.TimeProvider

	mu      sync.Mutex
	animate func(dt float64)
	running bool
	stop    chan struct{}
}

// NewSimulationDomain creates a frame-loop domain ticking at fps frames per
// second.
func NewSimulationDomain(fps float64) *SimulationDomain {
	if fps <= 0 {
		fps = 60
	}
	d := &SimulationDomain{
		fps: fps,
		tp:  domain.DefaultTimeProvider{},
	}
	d.Bind(d)
	d.SetCapabilities(domain.CapSimulator)
	d.SetTimeDelta(1 / fps)
	return d
}

// FPS returns the configured frame rate.
func (d *SimulationDomain) FPS() float64 { return d.fps }

// FrameInterval is the nominal duration of one frame.
func (d *SimulationDomain) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / d.fps)
}

// SetTimeProvider swaps the frame clock, for deterministic tests.
func (d *SimulationDomain) SetTimeProvider(tp domain.TimeProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tp = tp
}

// OnAnimate sets the per-frame callback, invoked between the prepend and
// append subdomain passes with the measured frame delta in seconds.
func (d *SimulationDomain) OnAnimate(fn func(dt float64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.animate = fn
}

// Running reports whether the frame loop is active.
func (d *SimulationDomain) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start runs the frame loop in the calling goroutine and blocks until Stop.
// Returns false when the domain is not initialized or already running.
func (d *SimulationDomain) Start() bool {
	if !d.Initialized() {
		logrus.WithFields(logrus.Fields{
			"function": "SimulationDomain.Start",
		}).Error("frame loop refused: domain not initialized")
		return false
	}
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return false
	}
	d.running = true
	d.stop = make(chan struct{})
	stop := d.stop
	tp := d.tp
	d.mu.Unlock()

	d.CallStartCallbacks()
	logrus.WithFields(logrus.Fields{
		"function": "SimulationDomain.Start",
		"fps":      d.fps,
	}).Info("frame loop started")

	ticker := time.NewTicker(d.FrameInterval())
	defer ticker.Stop()
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	last := tp.Now()
	for {
		// Stop takes priority over a pending frame.
		select {
		case <-stop:
			return true
		default:
		}
		select {
		case <-stop:
			return true
		case <-ticker.C:
			now := tp.Now()
			dt := now.Sub(last).Seconds()
			last = now
			d.SetTimeDelta(dt)

			frameStart := tp.Now()
			ok := d.TickSubdomains(true)
			d.mu.Lock()
			animate := d.animate
			d.mu.Unlock()
			if animate != nil {
				animate(dt)
			}
			if !d.TickSubdomains(false) {
				ok = false
			}
			d.RecordTick(tp.Since(frameStart), ok)
		}
	}
}

// Stop signals the frame loop to exit after the current frame. It does not
// wait for the loop; Start returning is the join point, so Stop is safe to
// call from inside the frame callback. A no-op returning true when the loop
// is not running.
func (d *SimulationDomain) Stop() bool {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return true
	}
	d.mu.Unlock()

	d.CallStopCallbacks()
	d.mu.Lock()
	select {
	case <-d.stop:
	default:
		close(d.stop)
	}
	d.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"function": "SimulationDomain.Stop",
	}).Info("frame loop stopped")
	return true
}
