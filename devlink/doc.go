// Package devlink locates a provider's shipped defaults file during
// development.
//
// A dev-link is a small indirection record mapping a provider id to the
// absolute path of its defaults file. Links live in a single versioned JSON
// registry (dev-links.json) under the user config directory; the registering
// author's tooling writes them, the resolution engine only reads.
//
// Resolve is the single capability the engine consumes:
//
//	reg := devlink.Open("")
//	path, err := reg.Resolve("my-package") // ErrNotLinked when absent
//
// The engine treats ErrNotLinked as "defaults scope is empty", never as a
// fatal error.
package devlink
