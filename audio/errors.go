package audio

import "errors"

// Sentinel errors for audio domain operations.
var (
	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")

	// ErrInvalidBlockSize indicates a non-positive block size.
	ErrInvalidBlockSize = errors.New("block size must be positive")

	// ErrNotInitialized indicates Start was called before a successful
	// Init.
	ErrNotInitialized = errors.New("audio domain not initialized")

	// ErrEmptyClip indicates an Opus stream decoded to zero samples.
	ErrEmptyClip = errors.New("clip contains no samples")
)
