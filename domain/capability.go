package domain

import "strings"

// Capability describes what a domain supports. The descriptor is set once,
// before Init, and is read-only afterward.
type Capability uint32

const (
	// CapSimulator marks a domain that advances application state.
	CapSimulator Capability = 1 << iota

	// CapRendering marks a domain that produces visual output.
	CapRendering

	// CapAudioIO marks a domain that produces or consumes audio blocks.
	CapAudioIO

	// CapOSC marks a domain that exchanges OSC control messages.
	CapOSC

	// CapConsoleIO marks a domain that interacts with the console.
	CapConsoleIO

	// CapStateSend marks a domain that broadcasts shared state.
	CapStateSend

	// CapStateReceive marks a domain that receives shared state.
	CapStateReceive

	// CapAsyncThread marks a domain that owns a background goroutine.
	CapAsyncThread
)

// CapNone is the empty capability descriptor.
const CapNone Capability = 0

var capabilityNames = []struct {
	flag Capability
	name string
}{
	{CapSimulator, "simulator"},
	{CapRendering, "rendering"},
	{CapAudioIO, "audio"},
	{CapOSC, "osc"},
	{CapConsoleIO, "console"},
	{CapStateSend, "state-send"},
	{CapStateReceive, "state-receive"},
	{CapAsyncThread, "async-thread"},
}

// Has reports whether all flags in mask are present.
func (c Capability) Has(mask Capability) bool {
	return c&mask == mask
}

// String returns a "|"-separated list of flag names.
func (c Capability) String() string {
	if c == CapNone {
		return "none"
	}
	names := make([]string, 0, len(capabilityNames))
	for _, entry := range capabilityNames {
		if c&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, "|")
}
