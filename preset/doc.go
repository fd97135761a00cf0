// Package preset stores and recalls named snapshots of parameter values.
//
// A Handler owns a directory of TOML preset files, one per preset, each
// mapping parameter addresses to values. Recalling a preset either jumps the
// registered parameters to the stored values or morphs them there over a
// configurable time. Morphing is implemented as a synchronous domain: attach
// the handler to any domain tree and each tick advances the interpolation by
// the owning domain's time delta.
//
//	handler, _ := preset.NewHandler(preset.NewOptions("presets"))
//	handler.Register(gain, freq)
//	simDomain.NewSubDomain(handler, true)
//	handler.Store("bright")
//	handler.Recall("dark")
//
// Watch enables hot reload: external edits to the most recently stored or
// recalled preset file are re-applied live.
package preset
