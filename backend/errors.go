package backend

import "errors"

// Backend errors.
var (
	// ErrUnsupportedFormat indicates no backend is registered for the file suffix.
	ErrUnsupportedFormat = errors.New("no backend registered for file suffix")

	// ErrNotFound indicates the settings file does not exist.
	ErrNotFound = errors.New("settings file not found")

	// ErrCorrupt indicates the settings file exists but could not be parsed.
	ErrCorrupt = errors.New("settings file is corrupt")
)
