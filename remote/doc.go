// Package remote exposes a domain tree's parameters for control over OSC.
//
// The Domain is a thread-owning asynchronous domain running a UDP server.
// Each exposed parameter is reachable at its own OSC address; incoming
// messages carry one numeric argument that becomes the parameter's new
// value:
//
//	ctl, _ := remote.New(remote.NewOptions())
//	ctl.Expose(gain, freq)
//	ctl.Init(nil)
//	ctl.Start()
//
//	client, _ := remote.NewClient(ctl.LocalAddr().String(), nil)
//	client.Send("/audio/gain", 0.5)
//
// With a 32-byte pre-shared key in Options.Secret, every packet is an
// XSalsa20-Poly1305 sealed OSC message prefixed with its 24-byte nonce;
// packets that fail authentication are dropped. Client applies the same
// sealing when given the key.
package remote
