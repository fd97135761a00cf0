package preset

import "errors"

// Sentinel errors for preset operations, classified with errors.Is().
var (
	// ErrPresetNotFound indicates no preset file exists under that name.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrNoParameters indicates a store was attempted with no registered
	// parameters.
	ErrNoParameters = errors.New("no parameters registered")

	// ErrWatcherActive indicates Watch was called while a watcher is
	// already running.
	ErrWatcherActive = errors.New("preset watcher already active")
)
