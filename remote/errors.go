package remote

import "errors"

// Sentinel errors for remote-control operations.
var (
	// ErrInvalidSecret indicates a pre-shared key that is not exactly 32
	// bytes.
	ErrInvalidSecret = errors.New("secret must be 32 bytes")

	// ErrDuplicateAddress indicates two exposed controls share an OSC
	// address.
	ErrDuplicateAddress = errors.New("control address already exposed")

	// ErrShortPacket indicates an encrypted packet too short to carry a
	// nonce.
	ErrShortPacket = errors.New("packet shorter than nonce")

	// ErrDecryptFailed indicates a packet that failed authentication.
	ErrDecryptFailed = errors.New("packet authentication failed")
)
