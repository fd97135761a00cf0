package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pion/opus"
	"github.com/pion/opus/pkg/oggreader"
	"github.com/sirupsen/logrus"
)

// opusFrameBytes holds one decoded 20 ms frame at 48 kHz: 960 samples per
// channel, two bytes per sample, up to two channels.
const opusFrameBytes = 960 * 2 * 2

// Clip is a fully decoded audio clip, ready for one-shot playback through a
// domain's mixer. Decoding happens once at load time; Streamer handles are
// cheap and independent.
type Clip struct {
	samples    [][2]float64
	sampleRate int
}

// LoadClip decodes an Ogg/Opus stream into memory using pion/opus. Decoded
// output is always 48 kHz; mono sources are spread to both channels.
func LoadClip(r io.Reader) (*Clip, error) {
	ogg, _, err := oggreader.NewWith(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ogg container: %w", err)
	}

	decoder := opus.NewDecoder()
	out := make([]byte, opusFrameBytes)
	var samples [][2]float64

	for {
		segments, _, err := ogg.ParseNextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ogg page: %w", err)
		}
		for _, segment := range segments {
			// The comment header page carries no audio.
			if bytes.HasPrefix(segment, []byte("OpusTags")) {
				continue
			}
			_, isStereo, err := decoder.Decode(segment, out)
			if err != nil {
				return nil, fmt.Errorf("opus decode failed: %w", err)
			}
			samples = appendPCM(samples, out, isStereo)
		}
	}
	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}
	logrus.WithFields(logrus.Fields{
		"function": "audio.LoadClip",
		"frames":   len(samples),
	}).Debug("opus clip decoded")
	return &Clip{samples: samples, sampleRate: 48000}, nil
}

// LoadClipBytes is LoadClip over an in-memory Ogg/Opus file.
func LoadClipBytes(data []byte) (*Clip, error) {
	return LoadClip(bytes.NewReader(data))
}

// appendPCM converts little-endian S16 PCM to stereo float frames.
func appendPCM(samples [][2]float64, pcm []byte, stereo bool) [][2]float64 {
	if stereo {
		for i := 0; i+3 < len(pcm); i += 4 {
			l := float64(int16(uint16(pcm[i])|uint16(pcm[i+1])<<8)) / 32768
			r := float64(int16(uint16(pcm[i+2])|uint16(pcm[i+3])<<8)) / 32768
			samples = append(samples, [2]float64{l, r})
		}
		return samples
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		v := float64(int16(uint16(pcm[i])|uint16(pcm[i+1])<<8)) / 32768
		samples = append(samples, [2]float64{v, v})
	}
	return samples
}

// Len returns the clip length in frames.
func (c *Clip) Len() int { return len(c.samples) }

// SampleRate returns the decoded sample rate in Hz.
func (c *Clip) SampleRate() int { return c.sampleRate }

// Streamer returns a fresh one-shot streamer over the clip. The streamer
// reports exhaustion in the usual way, so the mixer drops it when the clip
// ends.
func (c *Clip) Streamer() *ClipStreamer {
	return &ClipStreamer{clip: c}
}

// ClipStreamer streams a Clip from start to end once. Safe for concurrent
// use with the mixer goroutine.
type ClipStreamer struct {
	clip *Clip

	mu  sync.Mutex
	pos int
}

// Stream fills samples from the clip, reporting false once exhausted.
func (s *ClipStreamer) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.clip.samples) {
		return 0, false
	}
	n := copy(samples, s.clip.samples[s.pos:])
	s.pos += n
	return n, true
}

// Err reports streaming errors; a clip streamer never fails.
func (s *ClipStreamer) Err() error { return nil }

// Position returns the playback position in frames.
func (s *ClipStreamer) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
