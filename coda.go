// Package coda composes the standard domain graph of a creative-coding
// application: a frame-rate simulation loop at the root, an audio domain
// rendering on its own goroutine, and an optional OSC remote-control
// domain. Applications hang their own domains and callbacks off the graph
// through the App facade.
package coda

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/coda/audio"
	"github.com/opd-ai/coda/domain"
	"github.com/opd-ai/coda/param"
	"github.com/opd-ai/coda/remote"
)

// Registry tags under which App publishes its domains.
const (
	TagApp   = "app"
	TagAudio = "audio"
	TagOSC   = "osc"
)

// Options configures an App. Nil Audio or Remote disables that subsystem.
type Options struct {
	// FPS is the simulation frame rate.
	FPS float64

	// Audio configures the audio domain. Nil runs without audio.
	Audio *audio.Options

	// Remote configures OSC remote control. Nil runs without it.
	Remote *remote.Options
}

// NewOptions returns the default configuration: 60 fps with audio enabled
// and remote control disabled.
func NewOptions() *Options {
	return &Options{
		FPS:   60,
		Audio: audio.NewOptions(),
	}
}

// App owns the standard domain graph and drives its lifecycle. Construct
// with New, attach callbacks and parameters, then Start; Start blocks until
// Stop is called from a callback or another goroutine.
type App struct {
	opts Options

	sim    *SimulationDomain
	audio  *audio.Domain
	remote *remote.Domain

	mu      sync.Mutex
	onInit  func()
	onExit  func()
	started bool
}

// New builds the domain graph described by opts (nil means defaults).
// Nothing is initialized or running yet; that happens in Start.
func New(opts *Options) (*App, error) {
	if opts == nil {
		opts = NewOptions()
	}

	app := &App{
		opts: *opts,
		sim:  NewSimulationDomain(opts.FPS),
	}

	if opts.Audio != nil {
		audioDomain, err := audio.New(opts.Audio)
		if err != nil {
			return nil, err
		}
		app.audio = audioDomain
	}

	if opts.Remote != nil {
		remoteDomain, err := remote.New(opts.Remote)
		if err != nil {
			return nil, err
		}
		app.remote = remoteDomain
	}

	logrus.WithFields(logrus.Fields{
		"function": "coda.New",
		"fps":      opts.FPS,
		"audio":    app.audio != nil,
		"remote":   app.remote != nil,
	}).Info("application graph created")
	return app, nil
}

// SimulationDomain returns the root frame-loop domain.
func (a *App) SimulationDomain() *SimulationDomain { return a.sim }

// AudioDomain returns the audio domain, or nil when audio is disabled.
func (a *App) AudioDomain() *audio.Domain { return a.audio }

// RemoteDomain returns the OSC control domain, or nil when disabled.
func (a *App) RemoteDomain() *remote.Domain { return a.remote }

// OnInit sets a callback invoked once the graph is initialized, before the
// frame loop starts.
func (a *App) OnInit(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onInit = fn
}

// OnAnimate sets the per-frame callback.
func (a *App) OnAnimate(fn func(dt float64)) {
	a.sim.OnAnimate(fn)
}

// OnExit sets a callback invoked after the frame loop ends and the graph is
// cleaned up.
func (a *App) OnExit(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onExit = fn
}

// ExposeParameters registers parameters with the simulation domain and, when
// remote control is enabled, makes them settable over OSC.
func (a *App) ExposeParameters(params ...*param.Parameter) error {
	for _, p := range params {
		p.RegisterWithDomain(a.sim)
		if a.remote != nil {
			if err := a.remote.Expose(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Start initializes the graph, launches the thread domains, publishes the
// domains in the process registry, and blocks in the frame loop until Stop.
// The graph is torn down before Start returns. Returns false when any part
// of the lifecycle failed.
func (a *App) Start() bool {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return false
	}
	a.started = true
	onInit, onExit := a.onInit, a.onExit
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.started = false
		a.mu.Unlock()
	}()

	ok := a.initGraph()
	if ok && onInit != nil {
		onInit()
	}
	if ok {
		ok = a.startThreadDomains()
	}

	if ok {
		domain.AddPublicDomain(a.sim, TagApp)
		if a.audio != nil {
			domain.AddPublicDomain(a.audio, TagAudio)
		}
		if a.remote != nil {
			domain.AddPublicDomain(a.remote, TagOSC)
		}
		ok = a.sim.Start()
	}

	if !a.teardown() {
		ok = false
	}
	if onExit != nil {
		onExit()
	}
	return ok
}

// Stop ends the frame loop; Start then tears the graph down and returns.
func (a *App) Stop() {
	a.sim.Stop()
}

func (a *App) initGraph() bool {
	ok := a.sim.Init(nil)
	if a.audio != nil && !a.audio.Init(nil) {
		ok = false
	}
	if a.remote != nil && !a.remote.Init(nil) {
		ok = false
	}
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "App.initGraph",
		}).Error("application graph failed to initialize")
	}
	return ok
}

// startThreadDomains launches the audio and remote goroutines and waits for
// their asynchronous setup to complete.
func (a *App) startThreadDomains() bool {
	ok := true
	if a.audio != nil {
		if !a.audio.Start() || !a.audio.AsyncInitResult().Get() {
			logrus.WithFields(logrus.Fields{
				"function": "App.startThreadDomains",
			}).Error("audio domain failed to start")
			ok = false
		}
	}
	if a.remote != nil {
		if !a.remote.Start() || !a.remote.AsyncInitResult().Get() {
			logrus.WithFields(logrus.Fields{
				"function": "App.startThreadDomains",
			}).Error("remote control domain failed to start")
			ok = false
		}
	}
	return ok
}

func (a *App) teardown() bool {
	ok := true
	if a.remote != nil {
		if !a.remote.Stop() {
			ok = false
		}
		if !a.remote.Cleanup(nil) {
			ok = false
		}
	}
	if a.audio != nil {
		if !a.audio.Stop() {
			ok = false
		}
		if !a.audio.Cleanup(nil) {
			ok = false
		}
	}
	if !a.sim.Cleanup(nil) {
		ok = false
	}
	return ok
}
