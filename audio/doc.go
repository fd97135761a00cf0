// Package audio implements the audio computation domain: a thread-owning
// domain that renders fixed-size sample blocks from a streamer graph at the
// cadence implied by the configured sample rate and block size.
//
// The domain owns a beep mixer feeding a gain stage. Application code adds
// streamers with Play; per-block work hooks in as prepend or append
// subdomains, which tick around every rendered block on the audio goroutine.
// Rendered blocks go to a Sink, keeping device I/O out of this package: tests
// use a capturing sink, applications attach one backed by an output device.
//
//	dom, _ := audio.New(audio.NewOptions())
//	dom.Init(nil)
//	dom.Play(someStreamer)
//	dom.Start()
//	defer dom.Stop()
//
// The block gain is exposed as the continuous parameter "/audio/gain", so it
// can be tuned live from presets or remote control.
//
// Clip provides one-shot playback of Ogg/Opus encoded audio, decoded with
// pion/opus at load time.
package audio
