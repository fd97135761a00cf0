package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/coda/domain"
	"github.com/opd-ai/coda/param"
)

// Options is the construction-time configuration of an audio domain. Runtime
// tuning goes through the domain's parameters instead.
type Options struct {
	// SampleRate in Hz.
	SampleRate int

	// BlockSize is the number of frames rendered per block.
	BlockSize int

	// Gain is the initial block gain, exposed afterwards as the
	// "/audio/gain" parameter.
	Gain float64
}

// NewOptions returns the default audio configuration: 48 kHz, 512-frame
// blocks, unity gain.
func NewOptions() *Options {
	return &Options{
		SampleRate: 48000,
		BlockSize:  512,
		Gain:       1.0,
	}
}

// Sink receives rendered sample blocks. The slice is reused between calls;
// implementations must copy if they retain it.
type Sink interface {
	Write(block [][2]float64) error
}

// discardSink drops every block. Used when no sink is attached.
type discardSink struct{}

func (discardSink) Write([][2]float64) error { return nil }

// Domain renders audio blocks on its own goroutine. It is a thread-owning
// asynchronous domain: Init allocates the render path, Start launches the
// block clock, Stop joins it. Prepend subdomains tick before each block is
// rendered and append subdomains after, all on the audio goroutine.
type Domain struct {
	domain.ThreadDomain

	opts Options
	gain *param.Parameter
	tp   domain.TimeProvider

	mu        sync.Mutex
	mixer     beep.Mixer
	gainStage *effects.Gain
	sink      Sink
	buf       [][2]float64
	stop      chan struct{}
}

// New creates an audio domain from opts (nil means defaults).
func New(opts *Options) (*Domain, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if opts.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if opts.BlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	d := &Domain{
		opts: *opts,
		tp:   domain.DefaultTimeProvider{},
		sink: discardSink{},
	}
	d.Bind(d)
	d.SetCapabilities(domain.CapAudioIO | domain.CapAsyncThread)
	d.gain = param.New("gain", "audio", opts.Gain, 0, 2)
	d.gain.RegisterWithDomain(d)
	logrus.WithFields(logrus.Fields{
		"function":    "audio.New",
		"sample_rate": opts.SampleRate,
		"block_size":  opts.BlockSize,
	}).Info("audio domain created")
	return d, nil
}

// SetTimeProvider overrides the clock used for time-delta tracking. For
// deterministic tests.
func (d *Domain) SetTimeProvider(tp domain.TimeProvider) {
	if tp == nil {
		tp = domain.DefaultTimeProvider{}
	}
	d.tp = tp
}

// SetSink attaches the destination for rendered blocks. Call before Start;
// nil restores the discarding sink.
func (d *Domain) SetSink(s Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s == nil {
		s = discardSink{}
	}
	d.sink = s
}

// Gain returns the "/audio/gain" parameter.
func (d *Domain) Gain() *param.Parameter { return d.gain }

// SampleRate returns the configured sample rate.
func (d *Domain) SampleRate() beep.SampleRate { return beep.SampleRate(d.opts.SampleRate) }

// BlockSize returns the configured block size in frames.
func (d *Domain) BlockSize() int { return d.opts.BlockSize }

// BlockInterval returns the wall-clock duration of one block.
func (d *Domain) BlockInterval() time.Duration {
	return d.SampleRate().D(d.opts.BlockSize)
}

// Play adds streamers to the domain's mixer. Safe to call while running;
// the streamers join the mix at the next block boundary.
func (d *Domain) Play(streamers ...beep.Streamer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mixer.Add(streamers...)
}

// Init allocates the render path: prepend subdomains, block buffer and gain
// stage, then append subdomains. Repeated calls succeed without
// reallocating.
func (d *Domain) Init(parent domain.Domain) bool {
	if d.Initialized() {
		return true
	}
	ok := d.InitializeSubdomains(true)
	d.mu.Lock()
	d.buf = make([][2]float64, d.opts.BlockSize)
	d.gainStage = &effects.Gain{Streamer: &d.mixer, Gain: 0}
	d.mu.Unlock()
	d.CallInitializeCallbacks()
	if !d.InitializeSubdomains(false) {
		ok = false
	}
	d.SetInitialized(ok)
	return ok
}

// Cleanup stops the block clock if it is running and releases the render
// path.
func (d *Domain) Cleanup(parent domain.Domain) bool {
	d.Stop()
	ok := d.ThreadDomain.Cleanup(parent)
	d.mu.Lock()
	d.buf = nil
	d.gainStage = nil
	d.mu.Unlock()
	return ok
}

// Start launches the audio goroutine. Returns true when the goroutine was
// launched or is already running; false when the domain is not initialized.
func (d *Domain) Start() bool {
	if !d.Initialized() {
		logrus.WithFields(logrus.Fields{
			"function": "Domain.Start",
			"error":    ErrNotInitialized.Error(),
		}).Error("audio start refused")
		return false
	}
	return d.StartThread(d.setup, d.run)
}

func (d *Domain) setup() bool {
	d.mu.Lock()
	d.stop = make(chan struct{})
	d.mu.Unlock()
	d.CallStartCallbacks()
	return true
}

func (d *Domain) run() bool {
	interval := d.BlockInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.mu.Lock()
	stop := d.stop
	d.mu.Unlock()

	last := d.tp.Now()
	ok := true
	for {
		select {
		case <-stop:
			return ok
		case <-ticker.C:
			now := d.tp.Now()
			d.SetTimeDelta(now.Sub(last).Seconds())
			last = now
			start := d.tp.Now()
			blockOK := d.renderBlock()
			d.RecordTick(d.tp.Since(start), blockOK)
			if !blockOK {
				ok = false
			}
		}
	}
}

// renderBlock runs one audio cycle: prepend subdomains, pull one block
// through the gain stage into the sink, append subdomains.
func (d *Domain) renderBlock() bool {
	ok := d.TickSubdomains(true)

	d.mu.Lock()
	// effects.Gain applies (1 + Gain), so unity is 0.
	d.gainStage.Gain = d.gain.Get() - 1
	d.gainStage.Stream(d.buf)
	sink := d.sink
	buf := d.buf
	d.mu.Unlock()

	if err := sink.Write(buf); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Domain.renderBlock",
			"error":    err.Error(),
		}).Warn("audio sink write failed")
		ok = false
	}
	if !d.TickSubdomains(false) {
		ok = false
	}
	return ok
}

// Stop requests the audio goroutine to exit and joins it. A no-op returning
// true when nothing is running.
func (d *Domain) Stop() bool {
	if !d.ThreadRunning() {
		return true
	}
	d.CallStopCallbacks()
	d.mu.Lock()
	if d.stop != nil {
		select {
		case <-d.stop:
		default:
			close(d.stop)
		}
	}
	d.mu.Unlock()
	return d.JoinThread()
}
