// Package backend maps file suffixes to load/save implementations for flat
// string-keyed settings mappings.
//
// A Backend reads and writes one on-disk format. The Registry dispatches on
// the file suffix, so callers never hard-code a format:
//
//	reg := backend.Default()
//	b, _ := reg.ForPath("/etc/demo/settings.ini")
//	m, err := b.Load("/etc/demo/settings.ini")
//
// Built-in backends cover INI (the primary settings format), JSON, YAML and
// TOML. Further formats are added with Register without touching any caller.
//
// # Atomicity
//
// Every backend persists through a write-temp-then-rename discipline: the new
// contents are written to a temporary file in the target directory, flushed,
// and renamed over the destination. Concurrent readers observe either the old
// or the new file, never a partial write, and a crash mid-save leaves the
// previous contents intact.
//
// # Missing and corrupt files
//
// Load reports ErrNotFound for an absent file (or absent parent directory);
// callers decide whether that is fatal. A file that exists but does not parse
// reports ErrCorrupt and is never silently treated as empty.
package backend
