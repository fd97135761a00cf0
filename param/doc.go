// Package param provides the continuous runtime controls exposed by
// computation domains: float, integer, boolean, and choice values with
// clamped ranges and change notification.
//
// Parameters are the runtime-tunable side of a domain's configuration, as
// opposed to the immutable options set at construction. Each parameter has an
// OSC-style address derived from its group and name ("/group/name"), which is
// how the preset and remote packages refer to it.
//
// A parameter is a domain member: registering it with a domain adds it to the
// domain's parameter list so GUIs and remote-control layers can discover it.
//
//	gain := param.New("gain", "audio", 1.0, 0.0, 2.0)
//	gain.RegisterChangeCallback(func(v float64) { ... })
//	gain.RegisterWithDomain(audioDomain)
//
// All parameter types are safe for concurrent use; Set clamps to the
// declared range and fires change callbacks with the clamped value.
package param
