package audio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPCMMonoSpreadsChannels(t *testing.T) {
	// Two mono samples: 0x4000 (0.5) and 0xC000 (-0.5).
	pcm := []byte{0x00, 0x40, 0x00, 0xC0}
	samples := appendPCM(nil, pcm, false)

	require.Len(t, samples, 2)
	assert.InDelta(t, 0.5, samples[0][0], 1e-4)
	assert.Equal(t, samples[0][0], samples[0][1])
	assert.InDelta(t, -0.5, samples[1][0], 1e-4)
}

func TestAppendPCMStereo(t *testing.T) {
	// One stereo frame: left 0.5, right -0.5.
	pcm := []byte{0x00, 0x40, 0x00, 0xC0}
	samples := appendPCM(nil, pcm, true)

	require.Len(t, samples, 1)
	assert.InDelta(t, 0.5, samples[0][0], 1e-4)
	assert.InDelta(t, -0.5, samples[0][1], 1e-4)
}

func TestClipStreamerDrains(t *testing.T) {
	clip := &Clip{
		samples:    [][2]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}},
		sampleRate: 48000,
	}
	s := clip.Streamer()

	buf := make([][2]float64, 2)
	n, ok := s.Stream(buf)
	assert.Equal(t, 2, n)
	assert.True(t, ok)
	assert.Equal(t, 0.1, buf[0][0])
	assert.Equal(t, 2, s.Position())

	n, ok = s.Stream(buf)
	assert.Equal(t, 1, n)
	assert.True(t, ok)
	assert.Equal(t, 0.3, buf[0][0])

	n, ok = s.Stream(buf)
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

func TestClipStreamersAreIndependent(t *testing.T) {
	clip := &Clip{samples: [][2]float64{{1, 1}, {2, 2}}, sampleRate: 48000}
	a := clip.Streamer()
	b := clip.Streamer()

	buf := make([][2]float64, 2)
	a.Stream(buf)
	assert.Equal(t, 2, a.Position())
	assert.Equal(t, 0, b.Position())
	assert.Equal(t, 2, clip.Len())
	assert.Equal(t, 48000, clip.SampleRate())
}

func TestLoadClipRejectsGarbage(t *testing.T) {
	_, err := LoadClip(bytes.NewReader([]byte("not an ogg stream")))
	assert.Error(t, err)
}
