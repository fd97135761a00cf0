package audio

import (
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/coda/domain"
)

// captureSink records rendered blocks for inspection.
type captureSink struct {
	mu     sync.Mutex
	blocks int
	last   [][2]float64
}

func (s *captureSink) Write(block [][2]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks++
	s.last = make([][2]float64, len(block))
	copy(s.last, block)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks
}

func (s *captureSink) lastBlock() [][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// constStreamer emits a constant sample value forever.
type constStreamer float64

func (c constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = float64(c)
		samples[i][1] = float64(c)
	}
	return len(samples), true
}

func (c constStreamer) Err() error { return nil }

func newTestDomain(t *testing.T) (*Domain, *captureSink) {
	t.Helper()
	opts := NewOptions()
	opts.BlockSize = 480 // 10 ms blocks at 48 kHz
	d, err := New(opts)
	require.NoError(t, err)
	sink := &captureSink{}
	d.SetSink(sink)
	require.True(t, d.Init(nil))
	return d, sink
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(&Options{SampleRate: 0, BlockSize: 512})
	assert.ErrorIs(t, err, ErrInvalidSampleRate)

	_, err = New(&Options{SampleRate: 48000, BlockSize: 0})
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	d, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, beep.SampleRate(48000), d.SampleRate())
	assert.Equal(t, 512, d.BlockSize())
}

func TestDomainCapabilitiesAndParameters(t *testing.T) {
	d, err := New(nil)
	require.NoError(t, err)

	assert.True(t, d.Capabilities().Has(domain.CapAudioIO))
	assert.True(t, d.Capabilities().Has(domain.CapAsyncThread))

	p := d.ParameterByAddress("/audio/gain")
	require.NotNil(t, p)
	assert.Equal(t, "gain", p.Name())
}

func TestStartRequiresInit(t *testing.T) {
	d, err := New(nil)
	require.NoError(t, err)
	assert.False(t, d.Start())
}

func TestInitIsIdempotent(t *testing.T) {
	d, _ := newTestDomain(t)
	assert.True(t, d.Init(nil))
	assert.True(t, d.Initialized())
}

func TestRenderLoopDeliversBlocks(t *testing.T) {
	d, sink := newTestDomain(t)
	d.Play(constStreamer(0.25))

	require.True(t, d.Start())
	require.True(t, d.AsyncInitResult().Get())
	require.Eventually(t, func() bool {
		return sink.count() >= 3
	}, 5*time.Second, 5*time.Millisecond, "no audio blocks rendered")
	require.True(t, d.Stop())

	block := sink.lastBlock()
	require.Len(t, block, 480)
	assert.InDelta(t, 0.25, block[0][0], 1e-9)
	assert.InDelta(t, 0.25, block[0][1], 1e-9)
	assert.Positive(t, d.TimeDelta())
}

func TestGainParameterScalesOutput(t *testing.T) {
	d, sink := newTestDomain(t)
	d.Play(constStreamer(0.5))
	d.Gain().Set(2.0)

	require.True(t, d.Start())
	require.Eventually(t, func() bool {
		return sink.count() >= 2
	}, 5*time.Second, 5*time.Millisecond)
	require.True(t, d.Stop())

	block := sink.lastBlock()
	assert.InDelta(t, 1.0, block[0][0], 1e-9)
}

func TestSubdomainsTickPerBlock(t *testing.T) {
	d, sink := newTestDomain(t)

	var mu sync.Mutex
	ticks := 0
	step := domain.NewTickFunc(func(dt float64) bool {
		mu.Lock()
		ticks++
		mu.Unlock()
		return true
	})
	require.NotNil(t, d.NewSubDomain(step, true))
	assert.True(t, step.Initialized())

	require.True(t, d.Start())
	require.Eventually(t, func() bool {
		return sink.count() >= 3
	}, 5*time.Second, 5*time.Millisecond)
	require.True(t, d.Stop())

	mu.Lock()
	got := ticks
	mu.Unlock()
	assert.GreaterOrEqual(t, got, 3)
	assert.GreaterOrEqual(t, sink.count(), got-1, "subdomain should tick once per block")
}

func TestStopWithoutStart(t *testing.T) {
	d, _ := newTestDomain(t)
	assert.True(t, d.Stop())
}

func TestCleanupStopsRunningDomain(t *testing.T) {
	d, sink := newTestDomain(t)
	require.True(t, d.Start())
	require.Eventually(t, func() bool {
		return sink.count() >= 1
	}, 5*time.Second, 5*time.Millisecond)

	require.True(t, d.Cleanup(nil))
	assert.False(t, d.Initialized())
	assert.False(t, d.ThreadRunning())
}

func TestRestartAfterStop(t *testing.T) {
	d, sink := newTestDomain(t)
	require.True(t, d.Start())
	require.Eventually(t, func() bool { return sink.count() >= 1 }, 5*time.Second, 5*time.Millisecond)
	require.True(t, d.Stop())

	before := sink.count()
	require.True(t, d.Start())
	require.Eventually(t, func() bool {
		return sink.count() > before
	}, 5*time.Second, 5*time.Millisecond, "no blocks after restart")
	require.True(t, d.Stop())
}

func TestStatsRecordBlocks(t *testing.T) {
	d, sink := newTestDomain(t)
	require.True(t, d.Start())
	require.Eventually(t, func() bool { return sink.count() >= 2 }, 5*time.Second, 5*time.Millisecond)
	require.True(t, d.Stop())

	snap := d.Stats().Snapshot()
	assert.Positive(t, snap.Ticks)
}
