// Package catalog parses the artifact manifest into descriptors the
// acquisition manager works from.
//
// The manifest is a YAML document with a top-level artifacts list; each entry
// names a binary artifact, where to fetch it, where it lands under the
// install root, and optionally a checksum for integrity verification. The
// catalog is read-only after load: it performs no I/O beyond the initial
// parse and never touches the network.
//
// A missing manifest is a degraded condition, not an error: Load logs a
// warning and returns an empty catalog so callers can decide whether an
// empty required set is acceptable. A manifest that exists but cannot be
// parsed fails with ErrManifest.
package catalog
